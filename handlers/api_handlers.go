package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"menu-admin-go/auth"
	"menu-admin-go/db"
	"menu-admin-go/logger"
	"menu-admin-go/metric"
	"menu-admin-go/models"
)

// MenuItemsPath is the REST resource for menu items.
const MenuItemsPath = "/api/ucsb-dining-commons-menu-items"

// APIHandler holds the dependencies for API handlers
type APIHandler struct {
	Store   db.MenuItemStore
	Metrics *metric.Set
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(store db.MenuItemStore, metrics *metric.Set) *APIHandler {
	if metrics == nil {
		metrics = metric.NoopSet()
	}
	return &APIHandler{
		Store:   store,
		Metrics: metrics,
	}
}

// Register mounts the menu item API on r. Reads need ROLE_USER, writes ROLE_ADMIN.
func (h *APIHandler) Register(r gin.IRouter, sessions *auth.Sessions) {
	api := r.Group(MenuItemsPath, h.countRequests)
	{
		user := sessions.RequireRoleAPI(models.RoleUser)
		admin := sessions.RequireRoleAPI(models.RoleAdmin)

		api.GET("/all", user, h.GetAllMenuItems)
		api.GET("", user, h.GetMenuItemByID)
		api.POST("/post", admin, h.CreateMenuItem)
		api.PUT("", admin, h.UpdateMenuItem)
		api.DELETE("", admin, h.DeleteMenuItem)

		api.GET("/export", user, h.ExportMenuItems)
		api.POST("/import", admin, h.ImportMenuItems)
	}
}

func (h *APIHandler) countRequests(c *gin.Context) {
	c.Next()
	h.Metrics.APIRequests.Increment(c.Request.Method, strconv.Itoa(c.Writer.Status()))
}

// writeStoreError maps storage errors to the API's error body.
func writeStoreError(c *gin.Context, op string, err error) {
	var nf *db.EntityNotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"type": "EntityNotFoundException", "message": nf.Error()})
		return
	}
	logger.GetLogger().Errorw("menu item store failure", "op", op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"type": "InternalServerError", "message": "Failed to " + op})
}

// queryID parses the required ?id= parameter. It writes a 400 and returns
// false when the parameter is missing or not an integer.
func queryID(c *gin.Context) (int64, bool) {
	raw := c.Query("id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"type": "MissingServletRequestParameterException", "message": "Required parameter 'id' is not present."})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"type": "MethodArgumentTypeMismatchException", "message": fmt.Sprintf("Invalid id %q", raw)})
		return 0, false
	}
	return id, true
}

// GetAllMenuItems handles GET /api/ucsb-dining-commons-menu-items/all
func (h *APIHandler) GetAllMenuItems(c *gin.Context) {
	items, err := h.Store.ListMenuItems(c.Request.Context())
	if err != nil {
		writeStoreError(c, "retrieve menu items", err)
		return
	}
	if items == nil {
		// Return empty list instead of null for JSON consistency
		items = []models.MenuItem{}
	}
	c.JSON(http.StatusOK, items)
}

// GetMenuItemByID handles GET /api/ucsb-dining-commons-menu-items?id={id}
func (h *APIHandler) GetMenuItemByID(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	item, err := h.Store.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, "retrieve menu item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateMenuItem handles POST /api/ucsb-dining-commons-menu-items/post
// with query parameters name, diningCommonsCode and station.
func (h *APIHandler) CreateMenuItem(c *gin.Context) {
	fields := models.MenuItemFields{}
	for _, p := range []struct {
		param string
		dst   *string
	}{
		{"diningCommonsCode", &fields.DiningCommonsCode},
		{"name", &fields.Name},
		{"station", &fields.Station},
	} {
		v, present := c.GetQuery(p.param)
		if !present {
			c.JSON(http.StatusBadRequest, gin.H{
				"type":    "MissingServletRequestParameterException",
				"message": fmt.Sprintf("Required parameter '%s' is not present.", p.param),
			})
			return
		}
		*p.dst = v
	}

	logger.GetLogger().Infow("POST "+MenuItemsPath+"/post",
		"diningCommonsCode", fields.DiningCommonsCode,
		"name", fields.Name,
		"station", fields.Station)

	item, err := h.Store.CreateMenuItem(c.Request.Context(), fields)
	if err != nil {
		writeStoreError(c, "create menu item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateMenuItem handles PUT /api/ucsb-dining-commons-menu-items?id={id}
// with a JSON body; any id in the body is ignored.
func (h *APIHandler) UpdateMenuItem(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	var incoming models.MenuItemFields
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"type": "HttpMessageNotReadableException", "message": "Invalid request body: " + err.Error()})
		return
	}

	item, err := h.Store.UpdateMenuItem(c.Request.Context(), id, incoming)
	if err != nil {
		writeStoreError(c, "update menu item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /api/ucsb-dining-commons-menu-items?id={id}
func (h *APIHandler) DeleteMenuItem(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteMenuItem(c.Request.Context(), id); err != nil {
		writeStoreError(c, "delete menu item", err)
		return
	}
	c.JSON(http.StatusOK, models.GenericMessage{
		Message: fmt.Sprintf("UCSBDiningCommonsMenuItem with id %d deleted", id),
	})
}

// ExportMenuItems handles GET /api/ucsb-dining-commons-menu-items/export
func (h *APIHandler) ExportMenuItems(c *gin.Context) {
	items, err := h.Store.ListMenuItems(c.Request.Context())
	if err != nil {
		writeStoreError(c, "retrieve menu items", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="menu-items.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := db.ExportMenuItemsToExcel(items, c.Writer); err != nil {
		logger.GetLogger().Errorw("failed to export menu items", "error", err)
	}
}

// ImportMenuItems handles POST /api/ucsb-dining-commons-menu-items/import
// with a multipart "file" field holding an xlsx workbook.
func (h *APIHandler) ImportMenuItems(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"type": "BadRequest", "message": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	logger.GetLogger().Infow("received menu item spreadsheet", "filename", header.Filename)

	imported, err := db.ImportMenuItemsFromExcel(c.Request.Context(), h.Store, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"type": "BadRequest", "message": "Failed to import menu items: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Import successful",
		"importedCount": imported,
	})
}

// HealthHandler handles GET /healthz
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// ReadyHandler returns a GET /readyz handler that pings the store.
func ReadyHandler(store db.MenuItemStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "store unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	}
}
