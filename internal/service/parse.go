package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sshcollectorpro/configparser/addone/collect"
	"github.com/sshcollectorpro/configparser/internal/config"
	"github.com/sshcollectorpro/configparser/internal/model"
	"github.com/sshcollectorpro/configparser/pkg/logger"
)

// RunRequest 一次解析任务
type RunRequest struct {
	InputPath string
	// OutputPath 为空时使用 DefaultOutputPath
	OutputPath string
	// Format 为空时按 OutputPath 扩展名或配置决定
	Format   string
	Platform string
	// Fetch 非空时先从设备拉取配置写入 InputPath
	Fetch *FetchRequest
}

// RunResult 解析任务结果
type RunResult struct {
	RunID      string               `json:"run_id"`
	Record     collect.ConfigRecord `json:"record"`
	OutputPath string               `json:"output_path"`
	Format     string               `json:"format"`
	Stored     StoredObject         `json:"stored"`
	Duration   time.Duration        `json:"duration"`
}

// ParseService 加载 -> 解析 -> 写报表 -> 归档 -> 记录历史
// 配置与归档器整体替换，请求期间使用同一份快照
type ParseService struct {
	state   atomic.Pointer[serviceState]
	history *HistoryStore
}

type serviceState struct {
	cfg   *config.Config
	store ReportStore
}

// NewParseService 创建解析服务；历史库需在此之前初始化
func NewParseService(cfg *config.Config) *ParseService {
	s := &ParseService{history: NewHistoryStore()}
	s.Reload(cfg)
	return s
}

// Reload 替换配置（热更新），归档器随之重建
func (s *ParseService) Reload(cfg *config.Config) {
	s.state.Store(&serviceState{cfg: cfg, store: NewReportStore(cfg)})
}

// Config 当前配置快照，调用方不得修改
func (s *ParseService) Config() *config.Config {
	return s.state.Load().cfg
}

// History 解析历史，未启用时为 nil
func (s *ParseService) History() *HistoryStore {
	return s.history
}

// Extract 用指定平台插件解析已加载的文本
func (s *ParseService) Extract(platform, source, text string) (collect.ParseOutput, error) {
	cfg := s.Config()
	platform = platformOrDefault(cfg, platform)
	plugin, ok := collect.Lookup(platform)
	if !ok {
		return collect.ParseOutput{}, &UnexpectedError{
			Op:  "select platform",
			Err: fmt.Errorf("unsupported platform %q (available: %s)", platform, strings.Join(collect.Platforms(), ", ")),
		}
	}

	logger.DebugDocument(source, text, cfg.Parser.PreviewLines)

	ctx := collect.ParseContext{
		Platform: platform,
		Source:   source,
		Status:   collect.TaskStatusSuccess,
	}
	out, err := plugin.Parse(ctx, text)
	if err != nil {
		return collect.ParseOutput{}, &UnexpectedError{Op: "parse " + source, Err: err}
	}
	if len(out.Skipped) > 0 {
		logger.WithField("source", source).Debugf("Skipped unsupported interfaces: %s", strings.Join(out.Skipped, ", "))
	}
	return out, nil
}

// Run 执行完整流程；返回的错误已归类为 NotFoundError / WriteError / UnexpectedError
func (s *ParseService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	start := time.Now()
	st := s.state.Load()
	run := &model.ParseRun{
		ID:         uuid.NewString(),
		Platform:   platformOrDefault(st.cfg, req.Platform),
		SourcePath: req.InputPath,
		Status:     model.RunStatusPending,
		StartTime:  start,
	}
	log := logger.WithFields(logrus.Fields{"run_id": run.ID, "source": req.InputPath})

	res, rows, err := s.run(ctx, st, req, run)
	err = Classify("parse config", err)

	run.EndTime = time.Now()
	run.Duration = run.EndTime.Sub(start).Milliseconds()
	if err != nil {
		run.Status = model.RunStatusFailed
		run.ErrorKind = ErrorKind(err)
		run.ErrorMsg = err.Error()
		rows = nil
	} else {
		run.Status = model.RunStatusSuccess
	}
	if herr := s.history.Record(run, rows); herr != nil {
		log.WithField("error", herr).Warn("Failed to record parse history")
	}
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"hostname":   res.Record.Hostname,
		"interfaces": len(res.Record.Interfaces),
		"output":     res.OutputPath,
		"duration":   res.Duration,
	}).Info("Config parsed")
	return res, nil
}

func (s *ParseService) run(ctx context.Context, st *serviceState, req RunRequest, run *model.ParseRun) (*RunResult, []collect.FormattedRow, error) {
	if req.Fetch != nil {
		fetch := *req.Fetch
		fetch.SavePath = req.InputPath
		if fetch.Platform == "" {
			fetch.Platform = run.Platform
		}
		if err := FetchRunningConfig(ctx, st.cfg, fetch); err != nil {
			return nil, nil, err
		}
	}

	text, err := LoadDocument(req.InputPath)
	if err != nil {
		return nil, nil, err
	}

	out, err := s.Extract(run.Platform, req.InputPath, text)
	if err != nil {
		return nil, nil, err
	}
	rec := out.Record

	dest := strings.TrimSpace(req.OutputPath)
	format, err := ResolveFormat(req.Format, dest, st.cfg.Parser.OutputFormat)
	if err != nil {
		return nil, nil, &UnexpectedError{Op: "select format", Err: err}
	}
	if dest == "" {
		dest = DefaultOutputPath(req.InputPath, st.cfg.Parser.OutputDir, rec.Hostname, format)
		if dir := filepath.Dir(dest); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, &WriteError{Path: dest, Err: err}
			}
		}
	}

	writer := NewReportWriter(format)
	if err := writer.Write(rec, dest); err != nil {
		return nil, nil, err
	}

	stored, err := st.store.Store(ctx, StorageMeta{
		Hostname: rec.Hostname,
		DateTime: run.StartTime.Format("20060102_150405"),
		RunID:    run.ID,
	}, dest)
	if err != nil {
		// 报表已写入本地，归档失败只记录预警
		logger.WithField("error", err).Warn("Report archive failed")
	}

	run.OutputPath = dest
	run.OutputFormat = writer.Format()
	run.StoredURI = stored.URI
	run.Hostname = rec.Hostname
	run.InterfaceCount = len(rec.Interfaces)

	// 落库行使用本次运行 ID
	for i := range out.Rows {
		out.Rows[i].Base.TaskID = run.ID
	}

	return &RunResult{
		RunID:      run.ID,
		Record:     rec,
		OutputPath: dest,
		Format:     writer.Format(),
		Stored:     stored,
	}, out.Rows, nil
}

func platformOrDefault(cfg *config.Config, p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" && cfg != nil {
		p = cfg.Parser.Platform
	}
	if p == "" {
		p = "cisco_iosxe"
	}
	return p
}
