// Package db is the postgres side of the accounts module: OTP requests, OTP
// settings and users.
package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return s.ins.Tracer("accounts.outbound.db").Start(ctx, op)
}
