package sqlinline

const QHistoryEnsureTable = `--sql 3eb41bbe-dd30-43c1-89b2-472243c8a2b0
create table if not exists generation_tasks (
    id uuid primary key,
    task_id text not null default '',
    prompt text not null,
    width int not null,
    height int not null,
    status text not null,
    image_url text not null default '',
    elapsed_ms bigint not null default 0,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`

const QHistoryInsertTask = `--sql cf46095f-29ac-4bc8-9ac3-9b75776596b7
insert into generation_tasks(id, task_id, prompt, width, height, status)
values ($1, $2, $3, $4, $5, $6);
`

const QHistoryUpdateOutcome = `--sql 7090ddb7-26e6-4785-8102-fb83bf67d45d
update generation_tasks
set status = $2,
    image_url = $3,
    elapsed_ms = $4,
    updated_at = now()
where id = $1;
`

const QHistoryRecent = `--sql 7deb83ca-4882-46a5-a992-f11c4d7d4898
select id, task_id, prompt, width, height, status, image_url, elapsed_ms, created_at
from generation_tasks
order by created_at desc
limit $1;
`

const QHistoryListUnresolved = `--sql d97c81e8-e784-42b9-bb73-c62c933aa65d
select id, task_id, prompt, width, height, status, image_url, elapsed_ms, created_at
from generation_tasks
where status in ('pending', 'timeout')
  and task_id <> ''
  and created_at <= $1
order by created_at asc
limit $2;
`
