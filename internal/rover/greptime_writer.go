package rover

import (
	"context"
	"net"
	"strconv"
	"strings"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"roverd/internal/logging"
	"roverd/internal/telemetry"
)

// greptimeClient is the slice of the ingester client the writer uses.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes rover log entries and sync rows to GreptimeDB
// via the ingester client. Tables are auto-created on first ingest.
type GreptimeDBWriter struct {
	client    greptimeClient
	logTable  string
	syncTable string
}

// NewGreptimeDBWriter creates a GreptimeDB writer. The endpoint is
// "host" or "host:port"; empty table names fall back to the defaults.
func NewGreptimeDBWriter(endpoint, database, logTable, syncTable string) (*GreptimeDBWriter, error) {
	if logTable == "" {
		logTable = telemetry.LogTableName
	}
	if syncTable == "" {
		syncTable = telemetry.SyncTableName
	}

	cfg := greptime.NewConfig(endpoint).WithDatabase(database)
	if host, port, err := net.SplitHostPort(endpoint); err == nil {
		if p, err := strconv.Atoi(port); err == nil {
			cfg = greptime.NewConfig(host).WithPort(p).WithDatabase(database)
		}
	}

	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &GreptimeDBWriter{
		client:    client,
		logTable:  logTable,
		syncTable: syncTable,
	}, nil
}

// Write inserts a single log entry.
func (w *GreptimeDBWriter) Write(entry telemetry.LogEntry) error {
	ctx := context.Background()

	tbl, err := table.New(w.logTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("rover_id", types.STRING)
	tbl.AddFieldColumn("x", types.FLOAT64)
	tbl.AddFieldColumn("y", types.FLOAT64)
	tbl.AddFieldColumn("heading", types.FLOAT64)
	tbl.AddFieldColumn("temperature", types.FLOAT64)
	tbl.AddFieldColumn("humidity", types.FLOAT64)
	tbl.AddFieldColumn("soil_ph", types.FLOAT64)
	tbl.AddFieldColumn("soil_voltage", types.FLOAT64)
	tbl.AddFieldColumn("obstacles", types.STRING)
	tbl.AddFieldColumn("action", types.STRING)
	tbl.AddFieldColumn("reason", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(
		entry.RoverID,
		entry.Position.X,
		entry.Position.Y,
		entry.Position.Heading,
		entry.Temperature,
		entry.Humidity,
		entry.SoilPH,
		entry.SoilVoltage,
		strings.Join(entry.Obstacles.Blocked(), ","),
		entry.Action,
		entry.Reason,
		entry.Timestamp,
	); err != nil {
		return err
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		logging.FromContext(ctx).Error("greptime log write failed", "err", err)
		return err
	}
	return nil
}

// WriteSync inserts a sync attempt row.
func (w *GreptimeDBWriter) WriteSync(row telemetry.SyncRow) error {
	ctx := context.Background()

	tbl, err := table.New(w.syncTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddFieldColumn("attempt", types.FLOAT64)
	tbl.AddFieldColumn("source", types.STRING)
	tbl.AddFieldColumn("dest", types.STRING)
	tbl.AddFieldColumn("ok", types.STRING)
	tbl.AddFieldColumn("error", types.STRING)
	tbl.AddFieldColumn("duration_ms", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(
		row.SessionID,
		float64(row.Attempt),
		row.Source,
		row.Dest,
		strconv.FormatBool(row.OK),
		row.Error,
		float64(row.Duration.Milliseconds()),
		row.Timestamp,
	); err != nil {
		return err
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		logging.FromContext(ctx).Error("greptime sync write failed", "err", err)
		return err
	}
	return nil
}
