package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/pawlog/internal/backup"
	"github.com/dukerupert/pawlog/internal/handler"
	"github.com/dukerupert/pawlog/internal/middleware"
	"github.com/dukerupert/pawlog/internal/migration"
	"github.com/dukerupert/pawlog/internal/model"
	"github.com/dukerupert/pawlog/internal/service"
	"github.com/dukerupert/pawlog/internal/store"
	ws "github.com/dukerupert/pawlog/internal/websocket"
)

// Writes allowed per client per minute.
const writeLimit = 120

type crud interface {
	List(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

type Server struct {
	svc        *service.Service
	hub        *ws.Hub
	commandH   *handler.CommandHandler
	milestoneH *handler.MilestoneHandler
	apptH      *handler.AppointmentHandler
	analyticsH *handler.AnalyticsHandler
	exportH    *handler.ExportHandler
	backupH    *handler.BackupHandler
	settingsH  *handler.SettingsHandler
	records    map[string]crud
	backups    *backup.Manager
	limiter    *middleware.WriteLimiter
	logger     *slog.Logger
}

// Options carries what New needs beyond the service.
type Options struct {
	Backup backup.Config
	// Legacy is the browser storage export, nil when none is configured.
	Legacy migration.Source
	// AllFamilies migrates training data too. Set for remote deployments.
	AllFamilies bool
}

// New wires handlers over svc. Settings and backup history always live in
// the local database, whichever backend svc uses.
func New(svc *service.Service, settings *store.SettingsStore, backups *store.BackupStore, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	mgr := backup.NewManager(opts.Backup, svc, backups, func(s backup.Status) {
		hub.Broadcast(ws.NewMessage(ws.EntityBackup, string(s.State), 0))
	})

	recordLogger := logger.With("component", "records")
	return &Server{
		svc:        svc,
		hub:        hub,
		commandH:   handler.NewCommandHandler(svc, hub, logger.With("component", "command")),
		milestoneH: handler.NewMilestoneHandler(svc, hub, logger.With("component", "milestone")),
		apptH:      handler.NewAppointmentHandler(svc, hub, logger.With("component", "appointment")),
		analyticsH: handler.NewAnalyticsHandler(svc, hub, logger.With("component", "analytics")),
		exportH:    handler.NewExportHandler(svc, logger.With("component", "export")),
		backupH:    handler.NewBackupHandler(mgr, hub, logger.With("component", "backup")),
		settingsH:  handler.NewSettingsHandler(settings, svc, opts.Legacy, opts.AllFamilies, hub, logger.With("component", "settings")),
		records: map[string]crud{
			"potty-logs": handler.NewRecordHandler(svc.PottyLogs, func(l *model.PottyLog) int64 { return l.ID }, hub, recordLogger),
			"meal-logs":  handler.NewRecordHandler(svc.MealLogs, func(l *model.MealLog) int64 { return l.ID }, hub, recordLogger),
			"nap-logs":   handler.NewRecordHandler(svc.NapLogs, func(l *model.NapLog) int64 { return l.ID }, hub, recordLogger),
			"weights":    handler.NewRecordHandler(svc.Weights, func(e *model.WeightEntry) int64 { return e.ID }, hub, recordLogger),
			"teeth":      handler.NewRecordHandler(svc.Teeth, func(l *model.ToothLog) int64 { return l.ID }, hub, recordLogger),
			"grooming":   handler.NewRecordHandler(svc.Grooming, func(l *model.GroomingLog) int64 { return l.ID }, hub, recordLogger),
			"fears":      handler.NewRecordHandler(svc.Fears, func(l *model.FearLog) int64 { return l.ID }, hub, recordLogger),
		},
		backups: mgr,
		limiter: middleware.NewWriteLimiter(writeLimit, time.Minute),
		logger:  logger,
	}
}

// BackupManager returns the backup manager so the caller can start and
// stop its schedule.
func (s *Server) BackupManager() *backup.Manager {
	return s.backups
}

// WriteLimiter returns the limiter for periodic pruning.
func (s *Server) WriteLimiter() *middleware.WriteLimiter {
	return s.limiter
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	s.registerAPIRoutes(mux)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	var h http.Handler = mux
	h = middleware.ThrottleWrites(s.limiter)(h)
	h = middleware.Identify(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Commands and practice logs
	mux.HandleFunc("GET /api/commands", s.commandH.List)
	mux.HandleFunc("POST /api/commands", s.commandH.Create)
	mux.HandleFunc("GET /api/commands/{id}", s.commandH.Get)
	mux.HandleFunc("PUT /api/commands/{id}", s.commandH.Update)
	mux.HandleFunc("DELETE /api/commands/{id}", s.commandH.Delete)
	mux.HandleFunc("GET /api/commands/{id}/practice-logs", s.commandH.PracticeLogs)
	mux.HandleFunc("GET /api/practice-logs", s.commandH.ListPracticeLogs)
	mux.HandleFunc("POST /api/practice-logs", s.commandH.CreatePracticeLog)
	mux.HandleFunc("PUT /api/practice-logs/{id}", s.commandH.UpdatePracticeLog)
	mux.HandleFunc("DELETE /api/practice-logs/{id}", s.commandH.DeletePracticeLog)

	// Plain record families
	for path, h := range s.records {
		mux.HandleFunc("GET /api/"+path, h.List)
		mux.HandleFunc("POST /api/"+path, h.Create)
		mux.HandleFunc("GET /api/"+path+"/{id}", h.Get)
		mux.HandleFunc("PUT /api/"+path+"/{id}", h.Update)
		mux.HandleFunc("DELETE /api/"+path+"/{id}", h.Delete)
	}

	// Milestones
	mux.HandleFunc("GET /api/milestones", s.milestoneH.List)
	mux.HandleFunc("POST /api/milestones", s.milestoneH.Create)
	mux.HandleFunc("PUT /api/milestones/{id}", s.milestoneH.Update)
	mux.HandleFunc("DELETE /api/milestones/{id}", s.milestoneH.Delete)
	mux.HandleFunc("POST /api/milestones/{id}/complete", s.milestoneH.Complete)

	// Appointments
	mux.HandleFunc("GET /api/appointments", s.apptH.List)
	mux.HandleFunc("POST /api/appointments", s.apptH.Create)
	mux.HandleFunc("PUT /api/appointments/{id}", s.apptH.Update)
	mux.HandleFunc("DELETE /api/appointments/{id}", s.apptH.Delete)
	mux.HandleFunc("POST /api/appointments/{id}/complete", s.apptH.Complete)

	// Analytics
	mux.HandleFunc("GET /api/analytics/success-rate", s.analyticsH.SuccessRate)
	mux.HandleFunc("GET /api/analytics/potty-success-rate", s.analyticsH.PottySuccessRate)
	mux.HandleFunc("GET /api/analytics/weekly", s.analyticsH.Weekly)
	mux.HandleFunc("GET /api/analytics/counts", s.analyticsH.Counts)
	mux.HandleFunc("GET /api/analytics/snapshots", s.analyticsH.ListSnapshots)
	mux.HandleFunc("POST /api/analytics/snapshots", s.analyticsH.RecordSnapshot)

	// Exports
	mux.HandleFunc("GET /api/export/potty.csv", s.exportH.PottyCSV)
	mux.HandleFunc("GET /api/export/commands/{id}/practice.csv", s.exportH.PracticeCSV)
	mux.HandleFunc("GET /api/export/pawlog.xlsx", s.exportH.Workbook)
	mux.HandleFunc("GET /api/export/snapshot.json", s.exportH.Snapshot)

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups", s.backupH.Run)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)

	// Settings and legacy migration
	mux.HandleFunc("GET /api/settings", s.settingsH.List)
	mux.HandleFunc("PUT /api/settings/{key}", s.settingsH.Set)
	mux.HandleFunc("GET /api/migration", s.settingsH.MigrationStatus)
	mux.HandleFunc("POST /api/migration", s.settingsH.RunMigration)
}
