package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sshcollectorpro/configparser/addone/collect"
	"github.com/sshcollectorpro/configparser/internal/service"
	"github.com/sshcollectorpro/configparser/internal/util"
	"github.com/sshcollectorpro/configparser/pkg/logger"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse 成功响应
type SuccessResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ExtractHandler 配置解析处理器
type ExtractHandler struct {
	parseService *service.ParseService
}

// NewExtractHandler 创建解析处理器
func NewExtractHandler(parseService *service.ParseService) *ExtractHandler {
	return &ExtractHandler{parseService: parseService}
}

// Health 健康检查
// @Router /api/v1/health [get]
func (h *ExtractHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Extract 解析请求体中的配置文本，返回 JSON 记录
// @Summary 解析运行配置
// @Accept plain
// @Produce json
// @Param platform query string false "解析平台，默认取配置 parser.platform"
// @Success 200 {object} SuccessResponse "解析结果"
// @Failure 400 {object} ErrorResponse "请求参数错误"
// @Router /api/v1/extract [post]
func (h *ExtractHandler) Extract(c *gin.Context) {
	rec, ok := h.extract(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Code: "SUCCESS", Data: rec})
}

// ExtractCSV 解析并直接返回 CSV 报表
// @Produce text/csv
// @Router /api/v1/extract/csv [post]
func (h *ExtractHandler) ExtractCSV(c *gin.Context) {
	rec, ok := h.extract(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := service.EncodeCSV(&buf, rec); err != nil {
		logger.WithField("error", err).Error("CSV encoding failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "EXEC_FAILED", Message: "报表生成失败: " + err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(service.DefaultOutputPath("", "", rec.Hostname, service.FormatCSV))+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// extract 读取请求体并解析；失败时已写入响应
func (h *ExtractHandler) extract(c *gin.Context) (collect.ConfigRecord, bool) {
	if h.parseService == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "SERVICE_NOT_READY", Message: "解析服务未初始化"})
		return collect.ConfigRecord{}, false
	}

	platform := strings.ToLower(strings.TrimSpace(c.Query("platform")))
	if platform != "" {
		if _, ok := collect.Lookup(platform); !ok {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "UNSUPPORTED_PLATFORM",
				Message: "不支持的平台: " + platform + "，可选: " + strings.Join(collect.Platforms(), ", "),
			})
			return collect.ConfigRecord{}, false
		}
	}

	// server.max_body_bytes<=0 时不限制请求体大小，随热更新生效
	maxBodyBytes := h.parseService.Config().Server.MaxBodyBytes
	body := c.Request.Body
	if maxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, maxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Code: "BODY_TOO_LARGE", Message: "配置文本超过上限 " + strconv.FormatInt(maxBodyBytes, 10) + " 字节"})
			return collect.ConfigRecord{}, false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_PARAMS", Message: "读取请求体失败: " + err.Error()})
		return collect.ConfigRecord{}, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_PARAMS", Message: "请求体为空，需提交运行配置文本"})
		return collect.ConfigRecord{}, false
	}

	text, enc := util.DecodeDocument(raw)
	source := "http:" + c.GetString("request_id")
	out, err := h.parseService.Extract(platform, source, text)
	if err != nil {
		logger.WithFields(logrus.Fields{"source": source, "error": err}).Error("Extract failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "EXEC_FAILED", Message: service.Diagnostic(err)})
		return collect.ConfigRecord{}, false
	}

	logger.WithFields(logrus.Fields{
		"source":     source,
		"encoding":   enc,
		"hostname":   out.Record.Hostname,
		"interfaces": len(out.Record.Interfaces),
	}).Info("Config extracted")
	return out.Record, true
}

// Runs 最近的解析历史
// @Param limit query int false "返回条数，默认50，最大500"
// @Router /api/v1/runs [get]
func (h *ExtractHandler) Runs(c *gin.Context) {
	var history *service.HistoryStore
	if h.parseService != nil {
		history = h.parseService.History()
	}
	if history == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Code: "HISTORY_DISABLED", Message: "未启用解析历史 (database.sqlite.enabled)"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_PARAMS", Message: "limit 必须为整数"})
			return
		}
		limit = n
	}

	runs, err := history.RecentRuns(limit)
	if err != nil {
		logger.WithField("error", err).Error("Query parse runs failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "QUERY_FAILED", Message: "查询解析历史失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Code: "SUCCESS", Data: runs})
}
