package sqlinline

const QEnsureGenerationsTable = `--sql 6f0b8c52-3f7e-4b61-9f3a-2c4d7e91a0b8
create table if not exists generations (
  id uuid primary key,
  filename text not null default '',
  video_duration_seconds double precision not null default 0,
  frame_count integer not null default 0,
  outcome text not null,
  error_kind text not null default '',
  prompt text not null default '',
  latency_ms bigint not null default 0,
  created_at timestamptz not null default now()
);
create index if not exists generations_created_at_idx on generations (created_at desc);
`

const QInsertGeneration = `--sql 1d7a4e09-8c2b-4f55-b3e6-97a0c5d2e4f1
insert into generations (
  id, filename, video_duration_seconds, frame_count, outcome, error_kind, prompt, latency_ms, created_at
) values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9);
`

const QListRecentGenerations = `--sql a4c3e2d1-5b6f-4a78-9c0d-e1f2a3b4c5d6
select id::text, filename, video_duration_seconds, frame_count, outcome, error_kind, prompt, latency_ms, created_at
from generations
order by created_at desc
limit $1;
`
