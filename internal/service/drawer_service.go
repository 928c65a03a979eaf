// internal/service/drawer_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"drawer-service/internal/drawer"
	"drawer-service/internal/metrics"
	"drawer-service/internal/model"
	"drawer-service/internal/repository"
	"drawer-service/internal/utils"
)

// DrawerController is the subset of *drawer.Manager the service drives
type DrawerController interface {
	ListPorts(ctx context.Context) []drawer.Endpoint
	Connect(path string, baudRate int) error
	Disconnect()
	Reconnect() error
	AutoConnect(ctx context.Context) (drawer.Endpoint, error)
	Send(cmd drawer.Command) error
	Status() drawer.Status
}

// CommandInfo describes one drawer-kick variant
type CommandInfo struct {
	Name    string `json:"name"`
	Bytes   string `json:"bytes"`
	Default bool   `json:"default"`
}

// DrawerService wraps the connection manager with auditing and metrics
type DrawerService struct {
	manager        DrawerController
	operationRepo  repository.OperationRepository
	defaultCommand drawer.Command
	logger         *utils.ServiceLogger
	auditLogger    *utils.AuditLogger
}

// NewDrawerService creates a new drawer service instance
func NewDrawerService(
	manager DrawerController,
	operationRepo repository.OperationRepository,
	defaultCommand drawer.Command,
	logger *zap.Logger,
) *DrawerService {
	return &DrawerService{
		manager:        manager,
		operationRepo:  operationRepo,
		defaultCommand: defaultCommand,
		logger:         utils.NewServiceLogger(logger, "drawer-service"),
		auditLogger:    utils.NewAuditLogger(logger),
	}
}

type requestIDKey struct{}

// WithRequestID attaches the HTTP request ID to the audit records of ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ListPorts enumerates candidate serial ports
func (s *DrawerService) ListPorts(ctx context.Context) []drawer.Endpoint {
	return s.manager.ListPorts(ctx)
}

// Status returns the current connection snapshot
func (s *DrawerService) Status() drawer.Status {
	return s.manager.Status()
}

// Connect opens the given port
func (s *DrawerService) Connect(ctx context.Context, port string, baudRate int) (drawer.Status, error) {
	if baudRate <= 0 {
		baudRate = drawer.DefaultBaudRate
	}
	op := s.begin(model.OperationTypeConnect)
	err := s.manager.Connect(port, baudRate)
	s.record(ctx, op, port, baudRate, "", err)
	return s.manager.Status(), err
}

// Disconnect closes the port; it never fails
func (s *DrawerService) Disconnect(ctx context.Context) drawer.Status {
	before := s.manager.Status()
	op := s.begin(model.OperationTypeDisconnect)
	s.manager.Disconnect()
	s.record(ctx, op, before.Endpoint, before.BaudRate, "", nil)
	return s.manager.Status()
}

// Reconnect reopens the last successfully connected port
func (s *DrawerService) Reconnect(ctx context.Context) (drawer.Status, error) {
	op := s.begin(model.OperationTypeReconnect)
	err := s.manager.Reconnect()
	st := s.manager.Status()
	s.record(ctx, op, st.LastEndpoint, st.LastBaudRate, "", err)
	return st, err
}

// AutoConnect connects to the first enumerated port
func (s *DrawerService) AutoConnect(ctx context.Context) (drawer.Status, error) {
	op := s.begin(model.OperationTypeAutoConnect)
	target, err := s.manager.AutoConnect(ctx)
	baudRate := 0
	if target.Path != "" {
		baudRate = drawer.DefaultBaudRate
	}
	s.record(ctx, op, target.Path, baudRate, "", err)
	return s.manager.Status(), err
}

// ResolveCommand maps an API name to a command; empty selects the configured default
func (s *DrawerService) ResolveCommand(name string) (drawer.Command, error) {
	if strings.TrimSpace(name) == "" {
		return s.defaultCommand, nil
	}
	return drawer.ParseCommand(name)
}

// OpenDrawer sends the named kick command and waits for it to drain
func (s *DrawerService) OpenDrawer(ctx context.Context, commandName string) (drawer.Command, error) {
	cmd, err := s.ResolveCommand(commandName)
	if err != nil {
		return cmd, err
	}
	return cmd, s.send(ctx, model.OperationTypeOpenDrawer, cmd)
}

// TestDrawer sends the standard kick
func (s *DrawerService) TestDrawer(ctx context.Context) error {
	return s.send(ctx, model.OperationTypeTestDrawer, drawer.CommandStandard)
}

func (s *DrawerService) send(ctx context.Context, opType model.OperationType, cmd drawer.Command) error {
	op := s.begin(opType)
	err := s.manager.Send(cmd)
	st := s.manager.Status()
	s.record(ctx, op, st.Endpoint, st.BaudRate, cmd.String(), err)
	s.auditLogger.LogDrawerOpened(st.Endpoint, cmd.String(), requestIDFrom(ctx), err == nil, err)
	return err
}

// Commands lists the supported kick variants
func (s *DrawerService) Commands() []CommandInfo {
	all := drawer.Commands()
	out := make([]CommandInfo, 0, len(all))
	for _, c := range all {
		out = append(out, CommandInfo{
			Name:    c.String(),
			Bytes:   c.Hex(),
			Default: c == s.defaultCommand,
		})
	}
	return out
}

// ListOperations returns recent audit entries
func (s *DrawerService) ListOperations(ctx context.Context, filter *repository.OperationFilter) ([]*model.DrawerOperation, error) {
	return s.operationRepo.List(ctx, filter)
}

// OperationStats summarizes operations within the given window
func (s *DrawerService) OperationStats(ctx context.Context, window time.Duration) (*repository.OperationStats, error) {
	return s.operationRepo.GetOperationStats(ctx, time.Now().Add(-window))
}

// CleanupOperations deletes audit entries older than retention
func (s *DrawerService) CleanupOperations(ctx context.Context, retention time.Duration) (int64, error) {
	return s.operationRepo.DeleteOldOperations(ctx, time.Now().Add(-retention))
}

type pendingOperation struct {
	id      uuid.UUID
	opType  model.OperationType
	started time.Time
	log     *utils.OperationLogger
}

func (s *DrawerService) begin(opType model.OperationType) *pendingOperation {
	id := uuid.New()
	log := utils.NewOperationLogger(s.logger.Logger, string(opType), id.String())
	log.Start()
	return &pendingOperation{id: id, opType: opType, started: time.Now(), log: log}
}

// record persists the audit entry and updates metrics. Audit failures are
// logged and never change the outcome of the drawer operation.
func (s *DrawerService) record(ctx context.Context, op *pendingOperation, port string, baudRate int, command string, opErr error) {
	entry := &model.DrawerOperation{
		ID:            op.id,
		OperationType: op.opType,
		Port:          port,
		BaudRate:      baudRate,
		Command:       command,
		Status:        model.OperationStatusSuccess,
		DurationMs:    int(op.log.Elapsed().Milliseconds()),
		RequestID:     requestIDFrom(ctx),
		CreatedAt:     op.started,
	}

	if opErr != nil {
		entry.Status = model.OperationStatusFailed
		msg := opErr.Error()
		entry.ErrorMessage = &msg
		if code := drawer.ErrorCode(opErr); code != "" {
			entry.ErrorCode = &code
		}
		op.log.Error(opErr, zap.String("port", port), zap.Int("baud_rate", baudRate))
	} else {
		op.log.Success(zap.String("port", port), zap.Int("baud_rate", baudRate))
	}

	metrics.ObserveOperation(strings.ToLower(string(op.opType)), opErr, op.started)
	metrics.SetConnected(s.manager.Status().Connected)

	if err := s.operationRepo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("Failed to record drawer operation",
			zap.String("operation_id", op.id.String()),
			zap.Error(err),
		)
	}
}
