package schedule

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// httpStatus maps engine errors onto response codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrEmptyInput), errors.Is(err, ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTeamsUnknown), errors.Is(err, ErrAlreadyAuthoritative):
		return http.StatusConflict
	case errors.Is(err, ErrStoreWrite), errors.Is(err, ErrCacheWrite):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

func filterFrom(c *gin.Context) Filter {
	return Filter{From: c.Query("from"), To: c.Query("to"), ClubTeam: c.Query("club_team")}
}

type sideReq struct {
	Record   Record `json:"record"`
	ClubHome bool   `json:"club_home"`
}

type resultReq struct {
	Record    Record `json:"record"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
}

type saveReq struct {
	Original Record  `json:"original"`
	Edited   *Record `json:"edited"`
}

func RegisterRoutes(r *gin.Engine, e *Engine, protect gin.HandlerFunc) {
	api := r.Group("/api")
	{
		// Import a calendar, CSV or XLSX file into the ephemeral cache (protected)
		api.POST("/schedule/import", attachProtect(protect, func(c *gin.Context) {
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
			data, err := io.ReadAll(io.LimitReader(f, maxImportSize+1))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			team := c.PostForm("club_team")
			if team == "" {
				team = c.Query("club_team")
			}
			rep, err := e.ImportFile(c.Request.Context(), fh.Filename, data, team)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, rep)
		}))

		api.GET("/schedule", func(c *gin.Context) {
			view, err := e.View(c.Request.Context(), filterFrom(c))
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, view)
		})

		api.GET("/schedule/groups", func(c *gin.Context) {
			view, err := e.View(c.Request.Context(), filterFrom(c))
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, GroupByClubTeam(view))
		})

		api.GET("/schedule/lookup", func(c *gin.Context) {
			rec, err := e.Lookup(c.Request.Context(), c.Query("identity"))
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, rec)
		})

		// iCal export of the unified view
		api.GET("/schedule.ics", func(c *gin.Context) {
			view, err := e.View(c.Request.Context(), filterFrom(c))
			if err != nil {
				c.String(httpStatus(err), err.Error())
				return
			}
			c.Header("Content-Type", "text/calendar; charset=utf-8")
			c.Header("Content-Disposition", "attachment; filename=spielplan.ics")
			if err := WriteICS(c.Writer, view, e.Location()); err != nil {
				c.String(http.StatusInternalServerError, err.Error())
			}
		})

		api.GET("/schedule.csv", func(c *gin.Context) {
			view, err := e.View(c.Request.Context(), filterFrom(c))
			if err != nil {
				c.String(httpStatus(err), err.Error())
				return
			}
			filename := fmt.Sprintf("spielplan_%s.csv", time.Now().Format("2006-01-02"))
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.Header("Content-Disposition", "attachment; filename="+filename)
			if err := WriteCSV(c.Writer, view); err != nil {
				c.String(http.StatusInternalServerError, err.Error())
			}
		})

		api.POST("/schedule/side", attachProtect(protect, func(c *gin.Context) {
			var req sideReq
			if err := c.BindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
				return
			}
			rec, err := e.SetClubSide(c.Request.Context(), req.Record, req.ClubHome)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, rec)
		}))

		api.POST("/schedule/result", attachProtect(protect, func(c *gin.Context) {
			var req resultReq
			if err := c.BindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
				return
			}
			if req.HomeScore == nil || req.AwayScore == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "home_score and away_score are required"})
				return
			}
			rec, err := e.EnterResult(c.Request.Context(), req.Record, *req.HomeScore, *req.AwayScore)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, rec)
		}))

		// Save an edit; ephemeral records are promoted on save
		api.POST("/schedule/save", attachProtect(protect, func(c *gin.Context) {
			var req saveReq
			if err := c.BindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
				return
			}
			edited := req.Original
			if req.Edited != nil {
				edited = *req.Edited
			}
			rec, err := e.Save(c.Request.Context(), req.Original, edited)
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, rec)
		}))

		api.POST("/schedule/prune", attachProtect(protect, func(c *gin.Context) {
			n, err := e.Prune(c.Request.Context())
			if err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"removed": n})
		}))

		api.DELETE("/schedule/ephemeral", attachProtect(protect, func(c *gin.Context) {
			id := c.Query("identity")
			if id == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing identity"})
				return
			}
			if err := e.DeleteEphemeral(c.Request.Context(), id); err != nil {
				fail(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		}))

		api.DELETE("/schedule/:id", attachProtect(protect, func(c *gin.Context) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
				return
			}
			if err := e.DeleteAuthoritative(c.Request.Context(), id); err != nil {
				fail(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		}))
	}
}

// attachProtect wraps mutating handlers with the protect middleware when
// one is configured. Read routes stay public.
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
