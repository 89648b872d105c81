package sqlinline

const QInsertPool = `--sql b6191081-f005-42e0-8548-cc1339c2a7f1
insert into pools (id, name, target_amount, current_amount, status, version, created_at, updated_at)
values ($1::text, $2::text, $3::numeric, $4::numeric, $5::text, $6::int, now(), now())
returning created_at, updated_at;
`

const QGetPool = `--sql a28a6f6f-5da7-4040-97f6-012dec737be4
select p.id::text, p.name, p.target_amount, p.current_amount,
       array(select m.contributor_id from pool_members m where m.pool_id = p.id order by m.seq) as members,
       p.status, p.version, p.created_at, p.updated_at
from pools p
where p.id = $1::text;
`

const QListPools = `--sql 06b7172d-5716-4a97-bd3b-e86f3230cbda
select p.id::text, p.name, p.target_amount, p.current_amount,
       array(select m.contributor_id from pool_members m where m.pool_id = p.id order by m.seq) as members,
       p.status, p.version, p.created_at, p.updated_at
from pools p
order by p.created_at asc, p.id asc;
`

const QListActivePools = `--sql 5f9435e8-bd8b-4d30-89f3-a52ce1024246
select p.id::text, p.name, p.target_amount, p.current_amount,
       array(select m.contributor_id from pool_members m where m.pool_id = p.id order by m.seq) as members,
       p.status, p.version, p.created_at, p.updated_at
from pools p
where p.status = 'active'
order by p.created_at asc, p.id asc;
`

const QGetPoolVersion = `--sql 9e357007-e960-421b-9d8c-51185ebc0ea6
select version
from pools
where id = $1::text;
`

// QCreditPool bumps the aggregate only when version still equals $4 and
// returns the number of pools updated.
const QCreditPool = `--sql 08dd479c-69f6-4bbf-8b8d-a10f49d78e64
with bumped as (
    update pools
    set current_amount = current_amount + $2::numeric,
        version = version + 1,
        updated_at = now()
    where id = $1::text
      and version = $4::int
    returning id
),
joined as (
    insert into pool_members (pool_id, contributor_id)
    select id, $3::text from bumped
    on conflict (pool_id, contributor_id) do nothing
)
select count(*) from bumped;
`

const QRestatePool = `--sql 629bd911-80d3-4ac4-8a1d-d538527b0224
update pools
set current_amount = $2::numeric,
    version = version + 1,
    updated_at = now()
where id = $1::text
  and version = $3::int;
`

const QClearPoolMembers = `--sql 4ce431ec-7bee-4bb8-a558-19343e685543
delete from pool_members
where pool_id = $1::text;
`

const QInsertPoolMembers = `--sql 77677fe3-9534-44aa-b777-ab664c6e3cf0
insert into pool_members (pool_id, contributor_id)
select $1::text, t.member
from unnest($2::text[]) with ordinality as t(member, ord)
order by t.ord
on conflict (pool_id, contributor_id) do nothing;
`

const QSetPoolStatus = `--sql 2e401f93-4117-4563-86e6-be3eb400dc67
update pools
set status = $2::text,
    version = version + 1,
    updated_at = now()
where id = $1::text
  and version = $3::int;
`
