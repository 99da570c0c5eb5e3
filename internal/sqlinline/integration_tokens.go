package sqlinline

const QSelectIntegrationToken = `--sql 3c0b7f5e-91d2-4a6e-b8f4-2e7d61a0c9b3
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 9e41d2a8-5b7c-4f03-a6e9-c18f2b4d7e50
insert into integration_tokens (provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
