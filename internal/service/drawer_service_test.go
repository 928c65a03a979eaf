package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"drawer-service/internal/drawer"
	"drawer-service/internal/model"
	"drawer-service/internal/repository"
)

type fakeController struct {
	status    drawer.Status
	ports     []drawer.Endpoint
	connErr   error
	sendErr   error
	sent      []drawer.Command
	connected []string
}

func (f *fakeController) ListPorts(ctx context.Context) []drawer.Endpoint { return f.ports }

func (f *fakeController) Connect(path string, baudRate int) error {
	f.connected = append(f.connected, path)
	if f.connErr != nil {
		return f.connErr
	}
	f.status = drawer.Status{
		Connected: true, State: drawer.StateConnected, Endpoint: path, BaudRate: baudRate,
		LastEndpoint: path, LastBaudRate: baudRate,
	}
	return nil
}

func (f *fakeController) Disconnect() {
	f.status.Connected = false
	f.status.State = drawer.StateDisconnected
	f.status.Endpoint = ""
	f.status.BaudRate = 0
}

func (f *fakeController) Reconnect() error {
	if f.status.LastEndpoint == "" {
		return &drawer.Error{Kind: drawer.ErrNoPriorConnection, Op: "reconnect"}
	}
	return f.Connect(f.status.LastEndpoint, f.status.LastBaudRate)
}

func (f *fakeController) AutoConnect(ctx context.Context) (drawer.Endpoint, error) {
	if len(f.ports) == 0 {
		return drawer.Endpoint{}, &drawer.Error{Kind: drawer.ErrNoPortsAvailable, Op: "auto-connect"}
	}
	return f.ports[0], f.Connect(f.ports[0].Path, drawer.DefaultBaudRate)
}

func (f *fakeController) Send(cmd drawer.Command) error {
	if !f.status.Connected {
		return &drawer.Error{Kind: drawer.ErrNotConnected, Op: "send"}
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, cmd)
	return nil
}

func (f *fakeController) Status() drawer.Status { return f.status }

type failingRepo struct {
	repository.OperationRepository
}

func (failingRepo) Create(ctx context.Context, op *model.DrawerOperation) error {
	return errors.New("database unavailable")
}

func newTestService(ctrl *fakeController) (*DrawerService, repository.OperationRepository) {
	repo := repository.NewMemoryOperationRepository(100)
	return NewDrawerService(ctrl, repo, drawer.CommandStandard, zap.NewNop()), repo
}

func TestOpenDrawerRecordsOperation(t *testing.T) {
	ctrl := &fakeController{}
	svc, repo := newTestService(ctrl)
	ctx := WithRequestID(context.Background(), "req-7")

	_, err := svc.Connect(ctx, "/dev/ttyUSB0", 0)
	require.NoError(t, err)

	cmd, err := svc.OpenDrawer(ctx, "star")
	require.NoError(t, err)
	assert.Equal(t, drawer.CommandVendorB, cmd)
	assert.Equal(t, []drawer.Command{drawer.CommandVendorB}, ctrl.sent)

	ops, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	open := ops[0]
	assert.Equal(t, model.OperationTypeOpenDrawer, open.OperationType)
	assert.Equal(t, model.OperationStatusSuccess, open.Status)
	assert.Equal(t, "star", open.Command)
	assert.Equal(t, "/dev/ttyUSB0", open.Port)
	assert.Equal(t, "req-7", open.RequestID)

	assert.Equal(t, model.OperationTypeConnect, ops[1].OperationType)
	assert.Equal(t, drawer.DefaultBaudRate, ops[1].BaudRate)
}

func TestOpenDrawerDefaultCommand(t *testing.T) {
	ctrl := &fakeController{}
	svc := NewDrawerService(ctrl, repository.NewMemoryOperationRepository(10), drawer.CommandVendorA, zap.NewNop())
	_, err := svc.Connect(context.Background(), "COM3", 9600)
	require.NoError(t, err)

	cmd, err := svc.OpenDrawer(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, drawer.CommandVendorA, cmd)
}

func TestOpenDrawerUnknownCommand(t *testing.T) {
	ctrl := &fakeController{}
	svc, repo := newTestService(ctrl)

	_, err := svc.OpenDrawer(context.Background(), "citizen")
	assert.ErrorIs(t, err, drawer.ErrUnknownCommand)
	assert.Empty(t, ctrl.sent)

	ops, _ := repo.List(context.Background(), nil)
	assert.Empty(t, ops)
}

func TestFailedOperationRecordsErrorCode(t *testing.T) {
	ctrl := &fakeController{}
	svc, repo := newTestService(ctrl)

	err := svc.TestDrawer(context.Background())
	assert.ErrorIs(t, err, drawer.ErrNotConnected)

	ops, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, model.OperationStatusFailed, ops[0].Status)
	require.NotNil(t, ops[0].ErrorCode)
	assert.Equal(t, "NOT_CONNECTED", *ops[0].ErrorCode)
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	ctrl := &fakeController{}
	svc := NewDrawerService(ctrl, failingRepo{}, drawer.CommandStandard, zap.NewNop())

	st, err := svc.Connect(context.Background(), "COM3", 9600)
	require.NoError(t, err)
	assert.True(t, st.Connected)
}

func TestReconnectAndAutoConnect(t *testing.T) {
	ctrl := &fakeController{}
	svc, _ := newTestService(ctrl)

	_, err := svc.Reconnect(context.Background())
	assert.ErrorIs(t, err, drawer.ErrNoPriorConnection)

	_, err = svc.AutoConnect(context.Background())
	assert.ErrorIs(t, err, drawer.ErrNoPortsAvailable)

	ctrl.ports = []drawer.Endpoint{{Path: "/dev/ttyACM0"}}
	st, err := svc.AutoConnect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", st.Endpoint)

	st = svc.Disconnect(context.Background())
	assert.False(t, st.Connected)

	st, err = svc.Reconnect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", st.Endpoint)
	assert.Equal(t, 9600, st.BaudRate)
}

func TestCommands(t *testing.T) {
	svc, _ := newTestService(&fakeController{})

	cmds := svc.Commands()
	require.Len(t, cmds, 4)
	assert.Equal(t, CommandInfo{Name: "standard", Bytes: "1B 70 00 19 19", Default: true}, cmds[0])
	assert.Equal(t, CommandInfo{Name: "star", Bytes: "1B 07"}, cmds[3])
}

func TestCleanupOperations(t *testing.T) {
	ctrl := &fakeController{}
	svc, repo := newTestService(ctrl)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.DrawerOperation{
		OperationType: model.OperationTypeConnect,
		Status:        model.OperationStatusSuccess,
		CreatedAt:     time.Now().Add(-72 * time.Hour),
	}))
	svc.Disconnect(ctx)

	deleted, err := svc.CleanupOperations(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	stats, err := svc.OperationStats(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalOperations)
}

func TestConnectLogsOutcomeOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctrl := &fakeController{}
	svc := NewDrawerService(ctrl, repository.NewMemoryOperationRepository(10), drawer.CommandStandard, zap.New(core))

	_, err := svc.Connect(context.Background(), "/dev/ttyUSB0", 19200)
	require.NoError(t, err)

	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, "Operation completed successfully", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/dev/ttyUSB0", fields["port"])
	assert.Equal(t, int64(19200), fields["baud_rate"])

	ctrl.connErr = &drawer.Error{Kind: drawer.ErrConnection, Op: "connect", Port: "/dev/ttyUSB1", Err: errors.New("port busy")}
	_, err = svc.Connect(context.Background(), "/dev/ttyUSB1", 9600)
	require.Error(t, err)

	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "Operation failed", entries[0].Message)
}
