package sim

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pipeops-sim/internal/telemetry"
)

const createReadingsTable = `CREATE TABLE IF NOT EXISTS sensor_readings (
	pipeline_id TEXT NOT NULL,
	node_id     TEXT NOT NULL,
	pressure    DOUBLE PRECISION NOT NULL,
	flow        DOUBLE PRECISION NOT NULL,
	temperature DOUBLE PRECISION NOT NULL,
	vibration   DOUBLE PRECISION NOT NULL,
	acoustic    DOUBLE PRECISION NOT NULL,
	corrosion   DOUBLE PRECISION NOT NULL,
	status      TEXT NOT NULL,
	ts          TIMESTAMPTZ NOT NULL
)`

const insertReading = `INSERT INTO sensor_readings
	(pipeline_id, node_id, pressure, flow, temperature, vibration, acoustic, corrosion, status, ts)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

// PostgresWriter persists telemetry rows into a Postgres table.
type PostgresWriter struct {
	pool *pgxpool.Pool
}

// NewPostgresWriter connects to the database named by connString and ensures
// the readings table exists.
func NewPostgresWriter(ctx context.Context, connString string) (*PostgresWriter, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, createReadingsTable); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresWriter{pool: pool}, nil
}

// Write inserts a single reading.
func (w *PostgresWriter) Write(row telemetry.SensorReading) error {
	_, err := w.pool.Exec(context.Background(), insertReading,
		row.PipelineID, row.NodeID, row.Pressure, row.Flow, row.Temperature,
		row.Vibration, row.Acoustic, row.Corrosion, row.Status, row.Timestamp)
	return err
}

// WriteBatch inserts multiple readings in one round trip.
func (w *PostgresWriter) WriteBatch(rows []telemetry.SensorReading) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertReading,
			r.PipelineID, r.NodeID, r.Pressure, r.Flow, r.Temperature,
			r.Vibration, r.Acoustic, r.Corrosion, r.Status, r.Timestamp)
	}
	res := w.pool.SendBatch(context.Background(), batch)
	defer res.Close()
	for range rows {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the connection pool.
func (w *PostgresWriter) Close() {
	w.pool.Close()
}
