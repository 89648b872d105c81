package sqlinline

const QInsertContributor = `--sql 7055d0fd-5b37-48ca-a575-771277a9c30b
insert into contributors (id, public_id, name, email, role, locale, donation_count, total_donated, created_at, updated_at)
values ($1::text, nullif($2::text, ''), $3::text, $4::text, $5::text, $6::text, $7::int, $8::numeric, now(), now())
returning created_at, updated_at;
`

const QGetContributorByID = `--sql 944e7a9a-e437-4692-b692-83d46ff5870f
select id::text, coalesce(public_id, ''), name, email, role, locale, donation_count, total_donated, created_at, updated_at
from contributors
where id = $1::text;
`

const QGetContributorByEmail = `--sql 957b12ee-19b0-4ae3-837f-cb6b6f92e83f
select id::text, coalesce(public_id, ''), name, email, role, locale, donation_count, total_donated, created_at, updated_at
from contributors
where lower(email) = lower($1::text);
`

const QUpdateContributorLedger = `--sql ba63df10-83cd-4773-80ba-d8745efb9cdd
update contributors
set public_id = nullif($2::text, ''),
    donation_count = $3::int,
    total_donated = $4::numeric,
    updated_at = now()
where id = $1::text
returning updated_at;
`
