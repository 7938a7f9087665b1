package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"CoinPager/internal/domain/models"
	xhttp "CoinPager/pkg/http"
)

func bindJSON(t *testing.T, body string, dest interface{}) interface{} {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return xhttp.ReadAndValidateRequest(e.NewContext(req, httptest.NewRecorder()), dest)
}

func TestExportStartAcceptsOutOfRangeYears(t *testing.T) {
	req := &models.ExportStartRequest{}
	if verr := bindJSON(t, `{"symbols":["BTC"],"years":-3}`, req); verr != nil {
		t.Fatalf("out-of-range years must bind for clamping, got %v", verr)
	}
	if req.Years != -3 {
		t.Fatalf("years = %d, want -3 (clamping happens in the use case)", req.Years)
	}
}

func TestExportStartDefaultsYears(t *testing.T) {
	req := &models.ExportStartRequest{}
	if verr := bindJSON(t, `{"symbols":["BTC"]}`, req); verr != nil {
		t.Fatalf("bind: %v", verr)
	}
	if req.Years != 10 {
		t.Fatalf("years = %d, want default 10", req.Years)
	}
}

func TestExportStartRejectsMissingSymbols(t *testing.T) {
	req := &models.ExportStartRequest{}
	if verr := bindJSON(t, `{"years":5}`, req); verr == nil {
		t.Fatalf("missing symbols must be rejected")
	}
}
