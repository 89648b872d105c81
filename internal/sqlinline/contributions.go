package sqlinline

const QInsertContribution = `--sql 3fc017e5-7cf8-471d-b28a-b613e61ad3f3
insert into contributions (id, public_id, contributor_id, pool_id, amount, method, status, note, country, created_at, updated_at)
values ($1::text, nullif($2::text, ''), $3::text, nullif($4::text, ''), $5::numeric, $6::text, $7::text, $8::text, $9::text, now(), now())
returning created_at, updated_at;
`

const QGetContribution = `--sql ac3c7d0b-3164-4854-a201-580a0f66e7c4
select id::text, coalesce(public_id, ''), contributor_id, coalesce(pool_id::text, ''), amount, method, status,
       note, country, coalesce(decided_by, ''), decided_at, created_at, updated_at
from contributions
where id = $1::text;
`

// QTransitionContribution only matches while the stored status equals $6.
const QTransitionContribution = `--sql b8bb6ad7-a295-40ff-b9ed-1bd57cfb206f
update contributions
set status = $2::text,
    public_id = nullif($3::text, ''),
    decided_by = nullif($4::text, ''),
    decided_at = $5::timestamptz,
    updated_at = now()
where id = $1::text
  and status = $6::text
returning updated_at;
`

const QGetContributionStatus = `--sql be93db77-ade9-4ab1-bf98-7a79be23df0f
select status
from contributions
where id = $1::text;
`

const QListCountedContributionsByPool = `--sql 10620886-fdb5-4b88-8ef6-1b77ec813fc6
select id::text, coalesce(public_id, ''), contributor_id, coalesce(pool_id::text, ''), amount, method, status,
       note, country, coalesce(decided_by, ''), decided_at, created_at, updated_at
from contributions
where pool_id = $1::text
  and status = any($2::text[])
order by created_at asc, id asc;
`
