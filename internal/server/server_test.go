package server

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/cibil-extractor/internal/export"
	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cibil-extractor/internal/repository"
	"github.com/joseph-ayodele/cibil-extractor/internal/textextract"
)

const reportText = `ACCOUNT INFORMATION
Member Name
HDFC BANK
Account Number
XXXX1234
CLOSED ACCOUNTS
Member Name
SBI CARDS
Account Number
4000XXXX9876
`

type testEnv struct {
	client *ExtractionClient
	health healthpb.HealthClient
	dir    string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := repository.Open(ctx, repository.Config{Driver: "sqlite", DSN: filepath.Join(dir, "runs.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	runs := repository.NewRunRepository(db, nil)
	accounts := repository.NewAccountRepository(db, nil)

	tx := textextract.NewExtractor(textextract.Config{}, nil)
	proc := pipeline.NewProcessor(nil, runs, accounts, tx, 5*time.Second)
	svc := NewExtractionService(proc, export.NewService(runs, accounts, nil), nil)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(nil)))
	RegisterExtractionServer(gs, svc)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return testEnv{client: NewExtractionClient(conn), health: healthpb.NewHealthClient(conn), dir: dir}
}

func TestExtractText(t *testing.T) {
	e := newTestEnv(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), MDSourceName, "march.txt")

	out, err := e.client.ExtractText(ctx, wrapperspb.String(reportText))
	require.NoError(t, err)

	m := out.AsMap()
	assert.Equal(t, "march.txt", m["source_name"])
	assert.Equal(t, false, m["deduplicated"])
	_, err = uuid.Parse(m["run_id"].(string))
	require.NoError(t, err)

	accounts := m["accounts"].([]any)
	require.Len(t, accounts, 2)
	first := accounts[0].(map[string]any)
	assert.Equal(t, "HDFC BANK", first["member_name"])
	assert.Equal(t, "Open", first["section"])
	second := accounts[1].(map[string]any)
	assert.Equal(t, "SBI CARDS", second["member_name"])
	assert.Equal(t, "Closed", second["section"])

	stats := m["stats"].(map[string]any)
	assert.EqualValues(t, 2, stats["accepted"])
	assert.Equal(t, true, stats["closed_found"])

	// same content again is served from the stored run
	again, err := e.client.ExtractText(ctx, wrapperspb.String(reportText))
	require.NoError(t, err)
	assert.Equal(t, true, again.AsMap()["deduplicated"])
	assert.Equal(t, m["run_id"], again.AsMap()["run_id"])
}

func TestExtractText_Errors(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.client.ExtractText(ctx, wrapperspb.String("   "))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = e.client.ExtractText(ctx, wrapperspb.String("nothing that looks like a report"))
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "no valid accounts found")
}

func TestExtractFile(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	path := filepath.Join(e.dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte(reportText), 0o644))

	out, err := e.client.ExtractFile(ctx, wrapperspb.String(path))
	require.NoError(t, err)
	assert.Equal(t, "report.txt", out.AsMap()["source_name"])
	assert.Equal(t, "plain", out.AsMap()["method"])
	assert.Len(t, out.AsMap()["accounts"], 2)

	_, err = e.client.ExtractFile(ctx, wrapperspb.String(filepath.Join(e.dir, "notes.docx")))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = e.client.ExtractFile(ctx, wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestExportRun(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	out, err := e.client.ExtractText(ctx, wrapperspb.String(reportText))
	require.NoError(t, err)
	runID := out.AsMap()["run_id"].(string)

	req, err := structpb.NewStruct(map[string]any{"run_id": runID, "format": "csv"})
	require.NoError(t, err)
	var header metadata.MD
	csv, err := e.client.ExportRun(ctx, req, grpc.Header(&header))
	require.NoError(t, err)
	assert.Contains(t, string(csv.GetValue()), "HDFC BANK")
	assert.Equal(t, []string{"cibil_accounts.csv"}, header.Get(MDFileName))
	assert.Equal(t, []string{"text/csv"}, header.Get(MDContentType))

	t.Run("unknown run", func(t *testing.T) {
		req, err := structpb.NewStruct(map[string]any{"run_id": uuid.NewString()})
		require.NoError(t, err)
		_, err = e.client.ExportRun(ctx, req)
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
	t.Run("bad run id", func(t *testing.T) {
		req, err := structpb.NewStruct(map[string]any{"run_id": "nope"})
		require.NoError(t, err)
		_, err = e.client.ExportRun(ctx, req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
	t.Run("bad format", func(t *testing.T) {
		req, err := structpb.NewStruct(map[string]any{"run_id": runID, "format": "pdf"})
		require.NoError(t, err)
		_, err = e.client.ExportRun(ctx, req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp, err := e.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
