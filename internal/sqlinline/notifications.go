package sqlinline

const QInsertNotification = `--sql a6aa8f25-3db4-485a-a597-8d703725309e
insert into notifications (id, recipient_id, topic, message, category, created_at)
values ($1::text, nullif($2::text, ''), nullif($3::text, ''), $4::text, $5::text, now())
returning created_at;
`

// QListNotificationsFor treats a zero limit as unbounded.
const QListNotificationsFor = `--sql cf6891ca-d55f-4838-affb-19b2c6d2fb1d
select n.id::text, coalesce(n.recipient_id, ''), coalesce(n.topic, ''), n.message, n.category,
       exists (select 1 from notification_reads r where r.notification_id = n.id and r.reader_id = $1::text) as read,
       n.created_at
from notifications n
where n.recipient_id = $1::text
   or (n.recipient_id is null and n.topic = any($2::text[]))
order by n.created_at desc, n.id desc
limit nullif($3::int, 0);
`

const QMarkNotificationRead = `--sql 2a1c5af2-d2be-4a2c-a7ab-72e47d29048f
with target as (
    select n.id
    from notifications n
    where n.id = $1::text
      and (n.recipient_id = $2::text or (n.recipient_id is null and n.topic = any($3::text[])))
),
marked as (
    insert into notification_reads (notification_id, reader_id, read_at)
    select id, $2::text, now() from target
    on conflict (notification_id, reader_id) do nothing
)
select count(*) from target;
`
