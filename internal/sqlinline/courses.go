package sqlinline

const QListCourses = `--sql 6a2f9c14-d83e-4b57-9f01-7c5e3b2a8d46
select payload
from courses
order by position asc, id asc;
`

const QDeleteCourses = `--sql b57e0a93-2c4d-4e8f-a1b6-3d9c7f2e5a08
delete from courses;
`

const QInsertCourse = `--sql 1d8c4e7a-6f0b-4a29-8e53-b2f7c91d0e6a
insert into courses (id, position, title, payload, created_at, updated_at)
values ($1::bigint, $2::int, $3::text, $4::jsonb, now(), now());
`
