package main

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/audit"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/record"
)

const bodyKey = "body"

type HttpError struct {
	code int
	error
}

func (e HttpError) Error() string {
	return e.error.Error()
}

func NewHttpError(code int, err error) HttpError {
	return HttpError{
		code:  code,
		error: err,
	}
}

type server struct {
	controller controller
}

func (s server) RegisterRoutes(r *gin.Engine) {
	r.GET("/lexicons", s.ListLexicons)
	r.POST("/matches", validateBody, s.Match)
	r.POST("/records/:format", validateBody, s.AuditRecords)
}

func (s server) ListLexicons(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.ListLexicons())
}

func (s server) Match(c *gin.Context) {
	matches, err := s.controller.Match(string(c.MustGet(bodyKey).([]byte)))
	if err != nil {
		handleError(c, err)
		return
	}
	if matches == nil {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}
	c.JSON(http.StatusOK, matches)
}

/**
	AuditRecords audits the document in the request body. The format path parameter is ead or marcxml.

	An EAD document responds with its annotated finding aid, or no content when nothing matched. A MARCXML
	document responds with the list of its annotated records.
**/
func (s server) AuditRecords(c *gin.Context) {
	format, err := record.ParseFormat(c.Param("format"))
	if err != nil {
		handleError(c, NewHttpError(http.StatusNotFound, err))
		return
	}

	annotated, ok := s.auditDocument(c, format)
	if !ok {
		return
	}
	if format == record.MARCFormat {
		c.JSON(http.StatusOK, annotated)
		return
	}
	if len(annotated) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, annotated[0])
}

func (s server) auditDocument(c *gin.Context, format record.Format) ([]*audit.AnnotatedRecord, bool) {
	body := c.MustGet(bodyKey).([]byte)
	annotated, err := s.controller.AuditDocument(format, "request", bytes.NewReader(body))
	if err != nil {
		var malformed *lib.MalformedRecordError
		if errors.As(err, &malformed) {
			err = NewHttpError(http.StatusBadRequest, err)
		}
		handleError(c, err)
		return nil, false
	}
	return annotated, true
}

func validateBody(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		handleError(c, NewHttpError(http.StatusBadRequest, err))
	} else if len(bytes.TrimSpace(body)) == 0 {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("request body missing")))
	} else {
		c.Set(bodyKey, body)
		c.Next()
	}
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		abort(c, http.StatusInternalServerError, errors.New("abort called on nil error"))
		return
	}
	switch e := err.(type) {
	case HttpError:
		abort(c, e.code, e.error)
	default:
		abort(c, http.StatusInternalServerError, e)
	}
}

func abort(c *gin.Context, code int, err error) {
	switch {
	case code <= 500:
		c.JSON(code, lib.ErrorResponse{
			Status:  code,
			Message: err.Error(),
		})
		c.Abort()
	default:
		_ = c.AbortWithError(code, err)
	}
}
