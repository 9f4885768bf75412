package sim

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"pipeops-sim/internal/telemetry"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeDBWriter writes telemetry to GreptimeDB via the ingester client
type GreptimeDBWriter struct {
	client *greptime.Client
	db     string
	table  string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer. The ingester client
// has no SQL/DDL surface; GreptimeDB creates the table on first ingest.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	var cfg *greptime.Config
	if host, portStr, err := net.SplitHostPort(endpoint); err == nil {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, err
		}
		cfg = greptime.NewConfig(host).WithPort(port)
	} else {
		cfg = greptime.NewConfig(endpoint)
	}
	client, err := greptime.NewClient(cfg.WithDatabase(database))
	if err != nil {
		return nil, err
	}

	return &GreptimeDBWriter{
		client: client,
		db:     database,
		table:  telemetry.TelemetryTableName,
	}, nil
}

// Write inserts a single reading.
func (w *GreptimeDBWriter) Write(row telemetry.SensorReading) error {
	return w.WriteBatch([]telemetry.SensorReading{row})
}

// WriteBatch inserts multiple readings.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.SensorReading) error {
	if len(rows) == 0 {
		return nil
	}

	ctx := ingesterContext.New(context.Background())

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("pipeline_id", types.STRING)
	tbl.AddTagColumn("node_id", types.STRING)
	tbl.AddFieldColumn("name", types.STRING)
	tbl.AddFieldColumn("location", types.STRING)
	tbl.AddFieldColumn("lat", types.FLOAT64)
	tbl.AddFieldColumn("lon", types.FLOAT64)
	tbl.AddFieldColumn("pressure", types.FLOAT64)
	tbl.AddFieldColumn("flow", types.FLOAT64)
	tbl.AddFieldColumn("temperature", types.FLOAT64)
	tbl.AddFieldColumn("vibration", types.FLOAT64)
	tbl.AddFieldColumn("acoustic", types.FLOAT64)
	tbl.AddFieldColumn("corrosion", types.FLOAT64)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(
			r.PipelineID,
			r.NodeID,
			r.Name,
			r.Location,
			r.Lat,
			r.Lon,
			r.Pressure,
			r.Flow,
			r.Temperature,
			r.Vibration,
			r.Acoustic,
			r.Corrosion,
			r.Status,
			r.Timestamp,
		); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		slog.Error("greptime write failed", "err", err)
		return err
	}
	return nil
}
