package members

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrEmptyInput), errors.Is(err, ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreWrite):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type applyReq struct {
	Entries    []Entry     `json:"entries"`
	Selections []Selection `json:"selections"`
}

func RegisterRoutes(r *gin.Engine, s *Service, protect gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.GET("/members", func(c *gin.Context) {
			list, err := s.Roster(c.Request.Context(), Filter{Search: c.Query("q")})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, list)
		})

		// Diff an uploaded backup against the roster (protected, read-only)
		api.POST("/members/diff", attachProtect(protect, func(c *gin.Context) {
			if err := c.Request.ParseMultipartForm(12 << 20); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "multipart too large"})
				return
			}
			fh, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
				return
			}
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			defer f.Close()
			data, err := io.ReadAll(io.LimitReader(f, maxBackupSize+1))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			rep, err := s.DiffFile(c.Request.Context(), fh.Filename, data)
			if err != nil {
				c.JSON(httpStatus(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, rep)
		}))

		api.POST("/members/apply", attachProtect(protect, func(c *gin.Context) {
			var req applyReq
			if err := c.BindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
				return
			}
			res, err := s.Apply(c.Request.Context(), req.Entries, req.Selections)
			if err != nil {
				c.JSON(httpStatus(err), gin.H{"error": err.Error(), "result": res})
				return
			}
			c.JSON(http.StatusOK, res)
		}))

		api.GET("/members.csv", attachProtect(protect, func(c *gin.Context) {
			list, err := s.Roster(c.Request.Context(), Filter{})
			if err != nil {
				c.String(http.StatusInternalServerError, err.Error())
				return
			}
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.Header("Content-Disposition", "attachment; filename="+backupName("csv"))
			if err := WriteBackupCSV(c.Writer, list); err != nil {
				c.String(http.StatusInternalServerError, err.Error())
			}
		}))

		api.GET("/members.xlsx", attachProtect(protect, func(c *gin.Context) {
			list, err := s.Roster(c.Request.Context(), Filter{})
			if err != nil {
				c.String(http.StatusInternalServerError, err.Error())
				return
			}
			c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			c.Header("Content-Disposition", "attachment; filename="+backupName("xlsx"))
			if err := WriteBackupXLSX(c.Writer, list); err != nil {
				c.String(http.StatusInternalServerError, err.Error())
			}
		}))
	}
}

func backupName(ext string) string {
	return fmt.Sprintf("mitglieder_%s.%s", time.Now().Format("2006-01-02"), ext)
}

func attachProtect(protect gin.HandlerFunc, h gin.HandlerFunc) gin.HandlerFunc {
	if protect == nil {
		return h
	}
	return func(c *gin.Context) {
		protect(c)
		if c.IsAborted() {
			return
		}
		h(c)
	}
}
