package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
	"github.com/jobhuntboard/jobhuntboard/internal/board/service"
)

// FileTooLargeMessage is the warning shown when a picked batch contained files
// over the size cap. Files under the cap were still added.
const FileTooLargeMessage = "500KBを超えるファイルは保存できません。一部のファイルは追加されませんでした。"

// readUpload buffers one multipart part into memory. Oversized parts are still
// read here; the size cap is enforced per file by the attachment service so a
// mixed batch keeps its in-cap members.
func readUpload(fh *multipart.FileHeader) (service.MemoryFile, error) {
	f, err := fh.Open()
	if err != nil {
		return service.MemoryFile{}, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return service.MemoryFile{}, err
	}
	return service.MemoryFile{
		FileName: fh.Filename,
		MIME:     fh.Header.Get("Content-Type"),
		Content:  content,
	}, nil
}

// confirmFromRequest builds the destructive-operation confirmer from the
// client's explicit confirmed flag. The prompt text is echoed back so the
// client can render the dialog before retrying with confirmed=true.
func confirmFromRequest(c *gin.Context) service.Confirmer {
	return service.ConfirmerFunc(func(string) bool {
		return c.Query("confirmed") == "true"
	})
}

// RegisterBoardRoutes wires the board API. Every mutation responds with the
// resulting full board so the client can replace its state wholesale.
func RegisterBoardRoutes(r gin.IRouter, store *service.Store, syncer *service.Syncer) {
	full := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"board":  store.Board(),
			"saving": syncer.Saving(),
		})
	}

	r.GET("/api/board", full)

	r.GET("/api/board/companies", func(c *gin.Context) {
		b := store.Board()
		list := b.FilteredCompanies()
		if mode := c.Query("sort"); mode != "" {
			list = board.SortCompanies(list, mode)
		}
		c.JSON(http.StatusOK, list)
	})

	r.PUT("/api/board/strategy/:field", func(c *gin.Context) {
		var req struct {
			Value string `json:"value"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		field := c.Param("field")
		store.Apply(func(b board.Board) board.Board { return b.SetStrategyField(field, req.Value) })
		full(c)
	})

	r.PUT("/api/board/month", func(c *gin.Context) {
		var req struct {
			Month string `json:"month" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.Apply(func(b board.Board) board.Board { return b.SetMonth(req.Month) })
		full(c)
	})

	r.PUT("/api/board/goal", func(c *gin.Context) {
		var req struct {
			Month string `json:"month" binding:"required"`
			Goal  string `json:"goal"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.Apply(func(b board.Board) board.Board { return b.SetMonthlyGoal(req.Month, req.Goal) })
		full(c)
	})

	r.POST("/api/board/tasks", func(c *gin.Context) {
		store.Apply(func(b board.Board) board.Board { return b.AddTask() })
		full(c)
	})

	r.PATCH("/api/board/tasks/:id", func(c *gin.Context) {
		var patch board.TaskPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id := c.Param("id")
		store.Apply(func(b board.Board) board.Board { return b.UpdateTask(id, patch) })
		full(c)
	})

	r.DELETE("/api/board/tasks/:id", func(c *gin.Context) {
		id := c.Param("id")
		store.Apply(func(b board.Board) board.Board { return b.DeleteTask(id) })
		full(c)
	})

	r.POST("/api/board/industries", func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := store.AddIndustry(req.Name); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		full(c)
	})

	r.POST("/api/board/industries/:index/move", func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}
		// dir 0 binds fine and is a harmless self-swap downstream
		var req struct {
			Dir int `json:"dir"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.Apply(func(b board.Board) board.Board { return b.MoveIndustry(index, req.Dir) })
		full(c)
	})

	r.DELETE("/api/board/industries/:index", func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}
		if err := store.DeleteIndustry(index, confirmFromRequest(c)); err != nil {
			c.JSON(http.StatusPreconditionRequired, gin.H{"error": err.Error(), "prompt": service.ConfirmDeleteIndustry})
			return
		}
		full(c)
	})

	r.POST("/api/board/companies", func(c *gin.Context) {
		var form board.CompanyForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.Apply(func(b board.Board) board.Board { return b.SubmitCompany(form) })
		full(c)
	})

	r.PATCH("/api/board/companies/:id", func(c *gin.Context) {
		var patch board.CompanyPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id := c.Param("id")
		store.Apply(func(b board.Board) board.Board { return b.UpdateCompany(id, patch) })
		full(c)
	})

	r.PUT("/api/board/companies/:id/rating", func(c *gin.Context) {
		var req struct {
			Rating int `json:"rating"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id := c.Param("id")
		store.Apply(func(b board.Board) board.Board { return b.SetRating(id, req.Rating) })
		full(c)
	})

	r.DELETE("/api/board/companies/:id", func(c *gin.Context) {
		if err := store.DeleteCompany(c.Param("id"), confirmFromRequest(c)); err != nil {
			c.JSON(http.StatusPreconditionRequired, gin.H{"error": err.Error(), "prompt": service.ConfirmDeleteCompany})
			return
		}
		full(c)
	})

	r.POST("/api/board/quotes", func(c *gin.Context) {
		var q board.Quote
		if err := c.ShouldBindJSON(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.Apply(func(b board.Board) board.Board { return b.AddQuote(q) })
		full(c)
	})

	r.PUT("/api/board/quotes/:index", func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}
		var q board.Quote
		if err := c.ShouldBindJSON(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.Apply(func(b board.Board) board.Board { return b.UpdateQuote(index, q) })
		full(c)
	})

	r.DELETE("/api/board/quotes/:index", func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}
		store.Apply(func(b board.Board) board.Board { return b.DeleteQuote(index) })
		full(c)
	})

	r.PUT("/api/board/filters", func(c *gin.Context) {
		var req struct {
			Key   string `json:"key" binding:"required"`
			Value string `json:"value"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.Apply(func(b board.Board) board.Board { return b.SetFilter(req.Key, req.Value) })
		full(c)
	})

	r.PUT("/api/board/note", func(c *gin.Context) {
		var req struct {
			Note string `json:"note"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		store.Apply(func(b board.Board) board.Board { return b.SetNote(req.Note) })
		full(c)
	})

	r.POST("/api/board/files", func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var files []service.File
		for _, fh := range form.File["files"] {
			mf, err := readUpload(fh)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			files = append(files, mf)
		}
		if err := store.AttachFiles(c.Request.Context(), files); err != nil {
			// accepted with a warning; the in-cap files are still being added
			c.JSON(http.StatusOK, gin.H{"warning": FileTooLargeMessage})
			return
		}
		c.JSON(http.StatusOK, gin.H{"accepted": len(files)})
	})

	r.DELETE("/api/board/files/:id", func(c *gin.Context) {
		id := c.Param("id")
		store.Apply(func(b board.Board) board.Board { return b.DeleteFile(id) })
		full(c)
	})
}
