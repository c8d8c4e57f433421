package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/exporters"
	"github.com/mrlokans/wordmark/internal/importers"
)

// maxImportSize bounds uploaded export documents.
const maxImportSize = 10 << 20

// DocumentExporter builds export documents.
type DocumentExporter interface {
	Export(ctx context.Context, kind entities.ExportKind) (*entities.ExportDocument, error)
}

// DocumentImporter applies export documents.
type DocumentImporter interface {
	Import(ctx context.Context, raw []byte, mode importers.Mode) (importers.Result, error)
}

// TransferController downloads and uploads export documents.
type TransferController struct {
	exporter DocumentExporter
	importer DocumentImporter
	now      func() time.Time
}

func NewTransferController(exporter DocumentExporter, importer DocumentImporter) *TransferController {
	return &TransferController{exporter: exporter, importer: importer, now: time.Now}
}

// Export handles GET /api/export?type=all|favorites|history|current
// The document is served as an attachment.
func (tc *TransferController) Export(c *gin.Context) {
	kind := entities.ExportKind(c.DefaultQuery("type", string(entities.ExportAll)))
	if !kind.Valid() {
		respondBadRequest(c, "unknown export type: "+string(kind))
		return
	}

	doc, err := tc.exporter.Export(c.Request.Context(), kind)
	switch {
	case errors.Is(err, exporters.ErrNoCurrentVersion):
		respondErrorCode(c, http.StatusConflict, "no_current_version", err.Error())
		return
	case err != nil:
		respondInternalError(c, err, "export")
		return
	}

	data, err := exporters.Marshal(doc)
	if err != nil {
		respondInternalError(c, err, "encode export")
		return
	}

	filename := exporters.Filename(kind, tc.now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import handles POST /api/import?mode=merge|replace
// Accepts the document as the raw body or as a multipart "file" field.
func (tc *TransferController) Import(c *gin.Context) {
	mode, err := importers.ParseMode(c.Query("mode"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	raw, err := readImportBody(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := tc.importer.Import(c.Request.Context(), raw, mode)
	var validation *importers.ValidationError
	switch {
	case errors.Is(err, importers.ErrParse):
		respondErrorCode(c, http.StatusBadRequest, "import_parse", err.Error())
		return
	case errors.As(err, &validation):
		respondErrorCode(c, http.StatusUnprocessableEntity, "import_validation", err.Error())
		return
	case err != nil:
		respondInternalError(c, err, "import")
		return
	}

	logrus.WithFields(logrus.Fields{
		"type":            result.Type,
		"mode":            result.Mode,
		"favorites_added": result.FavoritesAdded,
		"history_added":   result.HistoryAdded,
	}).Info("Import applied")

	c.JSON(http.StatusOK, result)
}

func readImportBody(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		if file.Size > maxImportSize {
			return nil, errors.New("import file too large")
		}
		f, err := file.Open()
		if err != nil {
			return nil, errors.New("cannot read uploaded file")
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxImportSize))
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize+1))
	if err != nil {
		return nil, errors.New("cannot read request body")
	}
	if len(raw) > maxImportSize {
		return nil, errors.New("import file too large")
	}
	if len(raw) == 0 {
		return nil, errors.New("request body is empty")
	}
	return raw, nil
}
