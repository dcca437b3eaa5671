package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/services"
	"github.com/renelwllms/erepair1-sub001/utils"
)

var errorStatus = map[services.ErrorKind]int{
	services.KindUnauthenticated:          http.StatusUnauthorized,
	services.KindForbidden:                http.StatusForbidden,
	services.KindNotFound:                 http.StatusNotFound,
	services.KindValidation:               http.StatusBadRequest,
	services.KindNoOpSameStatus:           http.StatusBadRequest,
	services.KindInvalidState:             http.StatusBadRequest,
	services.KindConflictAlreadyResponded: http.StatusConflict,
	services.KindConflictAlreadyConverted: http.StatusConflict,
	services.KindConflictDuplicateInvoice: http.StatusConflict,
	services.KindExpired:                  http.StatusGone,
}

// respondError writes the service error. Internal failures are logged in full and the
// client only sees an opaque message.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		if code, ok := errorStatus[se.Kind]; ok {
			utils.RespondWithError(c, code, se.Message, se.Fields)
			return
		}
	}
	log.Error("request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Any("err", err))
	utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error", nil)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input", utils.BindingDetails(err))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input", utils.BindingDetails(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query", utils.BindingDetails(err))
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name, map[string]string{name: "must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// optionalID parses a query value already validated with the uuid tag.
func optionalID(v string) *uuid.UUID {
	if v == "" {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

func page[T any](items []T, total int64, q pageQuery) utils.Page[T] {
	if items == nil {
		items = []T{}
	}
	p, size := q.Page, q.PageSize
	if p == 0 {
		p = 1
	}
	if size == 0 {
		size = 20
	}
	return utils.Page[T]{Data: items, Total: total, Page: p, PageSize: size}
}
