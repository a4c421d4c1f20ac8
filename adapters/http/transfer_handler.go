package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	backupUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/backup"
	exportUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/export"
	reportUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/report"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

const maxBackupBody = 64 << 20

// TransferHandler serves everything that moves data in or out as a file:
// the PDF report, CSV and JSON exports, and backups.
type TransferHandler struct {
	reportUseCase *reportUC.ReportUseCase
	exportUseCase *exportUC.ExportUseCase
	backupUseCase *backupUC.BackupUseCase
	logger        logger.Logger
}

func NewTransferHandler(report *reportUC.ReportUseCase, export *exportUC.ExportUseCase, backup *backupUC.BackupUseCase, log logger.Logger) *TransferHandler {
	return &TransferHandler{
		reportUseCase: report,
		exportUseCase: export,
		backupUseCase: backup,
		logger:        log,
	}
}

func attachment(c *gin.Context, name, contentType string, content []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, content)
}

func (h *TransferHandler) Report(c *gin.Context) {
	out, err := h.reportUseCase.ExecuteRender(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	attachment(c, out.FileName, "application/pdf", out.PDF)
}

func (h *TransferHandler) exportFile(c *gin.Context, run func() (*exportUC.File, error)) {
	f, err := run()
	if err != nil {
		c.Error(err)
		return
	}
	attachment(c, f.Name, f.ContentType, f.Content)
}

func (h *TransferHandler) ExportCSV(c *gin.Context) {
	h.exportFile(c, func() (*exportUC.File, error) { return h.exportUseCase.ExecuteCSV(c.Request.Context()) })
}

func (h *TransferHandler) ExportEvidenceManifest(c *gin.Context) {
	h.exportFile(c, func() (*exportUC.File, error) { return h.exportUseCase.ExecuteEvidenceManifest(c.Request.Context()) })
}

func (h *TransferHandler) ExportTaxSubmission(c *gin.Context) {
	h.exportFile(c, func() (*exportUC.File, error) { return h.exportUseCase.ExecuteTaxSubmission(c.Request.Context()) })
}

func (h *TransferHandler) DownloadBackup(c *gin.Context) {
	out, err := h.backupUseCase.ExecuteExport(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	attachment(c, out.FileName, "application/json", out.Content)
}

func (h *TransferHandler) UploadBackup(c *gin.Context) {
	url, err := h.backupUseCase.ExecuteUpload(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}

// ImportBackup takes the backup document as the raw request body.
func (h *TransferHandler) ImportBackup(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupBody))
	if err != nil {
		c.Error(apperror.NewInvalidInput("cannot read backup body", err))
		return
	}
	out, err := h.backupUseCase.ExecuteImport(c.Request.Context(), raw)
	if err != nil {
		c.Error(err)
		return
	}
	h.logger.Info("Backup imported", zap.Int("buckets", len(out.Replaced)))
	c.JSON(http.StatusOK, gin.H{"success": true, "replaced": out.Replaced})
}

func (h *TransferHandler) Usage(c *gin.Context) {
	out, err := h.backupUseCase.ExecuteUsage(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *TransferHandler) Clear(c *gin.Context) {
	if err := h.backupUseCase.ExecuteClear(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
