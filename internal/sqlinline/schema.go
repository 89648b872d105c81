package sqlinline

// QSchema is idempotent and safe to apply on every deploy.
const QSchema = `--sql 1e8bf72b-5f5b-4fa0-a7d9-2f6aed0ab4e9
create table if not exists contributors (
    id text primary key,
    public_id text unique,
    name text not null,
    email text not null,
    role text not null default 'donor',
    locale text not null default 'en',
    donation_count integer not null default 0,
    total_donated numeric not null default 0,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create unique index if not exists contributors_email_key on contributors (lower(email));

create table if not exists pools (
    id text primary key,
    name text not null,
    target_amount numeric not null check (target_amount > 0),
    current_amount numeric not null default 0,
    status text not null default 'active',
    version integer not null default 1,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create index if not exists pools_status_created_idx on pools (status, created_at);

create table if not exists pool_members (
    pool_id text not null references pools(id) on delete cascade,
    contributor_id text not null,
    seq bigint generated always as identity,
    primary key (pool_id, contributor_id)
);

-- contributor_id carries no foreign key: reconciliation reports dangling owners.
create table if not exists contributions (
    id text primary key,
    public_id text unique,
    contributor_id text not null,
    pool_id text references pools(id),
    amount numeric not null check (amount > 0),
    method text not null default 'manual',
    status text not null default 'provisional',
    note text not null default '',
    country text not null default '',
    decided_by text,
    decided_at timestamptz,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create index if not exists contributions_pool_status_idx on contributions (pool_id, status);

create table if not exists notifications (
    id text primary key,
    recipient_id text,
    topic text,
    message text not null,
    category text not null default 'info',
    created_at timestamptz not null default now(),
    check (recipient_id is not null or topic is not null)
);
create index if not exists notifications_recipient_idx on notifications (recipient_id, created_at desc);
create index if not exists notifications_topic_idx on notifications (topic, created_at desc);

create table if not exists notification_reads (
    notification_id text not null references notifications(id) on delete cascade,
    reader_id text not null,
    read_at timestamptz not null default now(),
    primary key (notification_id, reader_id)
);
`
