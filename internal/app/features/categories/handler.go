// internal/app/features/categories/handler.go
package categories

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studyplanet/internal/app/features/errors"
	categorystore "github.com/dalemusser/studyplanet/internal/app/store/categories"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/auditlog"
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/app/system/inputval"
	"github.com/dalemusser/studyplanet/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves category creation (admins) and the public category list.
type Handler struct {
	Store  *categorystore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
	Audit  *auditlog.Logger // optional
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  categorystore.New(db),
		ErrLog: errLog,
		Log:    logger,
	}
}

type createRequest struct {
	Name        string `json:"name" validate:"notblank,max=100" label:"Category name"`
	Description string `json:"description" validate:"max=500" label:"Description"`
}

// HandleCreate accepts {name, description} as JSON or form fields.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			h.ErrLog.LogBadRequest(w, r, "decode category", err, "Invalid request body")
			return
		}
	} else {
		req.Name = r.FormValue("name")
		req.Description = r.FormValue("description")
	}

	if res := inputval.Validate(req); res.HasErrors() {
		h.ErrLog.Respond(w, r, "category validation", apperr.Invalid("%s", res.First()))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "category create")
	defer cancel()

	cat, err := h.Store.Create(ctx, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, categorystore.ErrDuplicateName) {
			h.ErrLog.Respond(w, r, "category create", apperr.Invalid("Category already exists"))
			return
		}
		h.ErrLog.LogServerError(w, r, "category create", err, "Failed to create category")
		return
	}
	h.Log.Info("category created", zap.String("category_id", cat.ID.Hex()), zap.String("name", cat.Name))
	if id, ok := auth.CurrentIdentity(r); ok {
		h.Audit.CategoryCreated(r.Context(), r, id.ID, cat.ID, cat.Name)
	}
	uierrors.OK(w, http.StatusOK, "Category Created Successfully", cat)
}

// HandleList returns every category ordered by name.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "category list")
	defer cancel()

	cats, err := h.Store.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "category list", err, "Failed to fetch categories")
		return
	}
	uierrors.OK(w, http.StatusOK, "", cats)
}
