package frontend

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"menu-admin-go/auth"
	"menu-admin-go/backend"
	"menu-admin-go/logger"
	"menu-admin-go/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
}

// Pages serves the admin frontend. Every read and write goes through
// Client to the REST backend; nothing here touches storage directly.
type Pages struct {
	Client   *backend.Client
	Sessions *auth.Sessions
	Users    *auth.Users
}

func NewPages(client *backend.Client, sessions *auth.Sessions, users *auth.Users) *Pages {
	return &Pages{Client: client, Sessions: sessions, Users: users}
}

// Register installs the templates and the page routes on r.
func (p *Pages) Register(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, IndexPath) })
	r.GET("/login", p.LoginForm)
	r.POST("/login", p.Login)
	r.POST("/logout", p.Logout)

	pages := r.Group(IndexPath, p.Sessions.RequireRolePage(models.RoleUser))
	{
		pages.GET("", p.Index)
		pages.GET("/export", p.Export)

		admin := pages.Group("", p.Sessions.RequireRolePage(models.RoleAdmin))
		admin.GET("/create", p.CreateForm)
		admin.POST("/create", p.Create)
		admin.GET("/edit/:id", p.EditForm)
		admin.POST("/edit/:id", p.Edit)
		admin.POST("/delete/:id", p.Delete)
	}
}

// page carries what the shared layout needs.
type page struct {
	Title   string
	User    *models.User
	Flashes []string
}

func (p *Pages) page(c *gin.Context, title string) page {
	return page{
		Title:   title,
		User:    p.Sessions.CurrentUser(c),
		Flashes: p.Sessions.Flashes(c),
	}
}

type indexPage struct {
	page
	CanCreate bool
	Table     Table
}

// Index handles GET /ucsb-dining-commons-menu-items
func (p *Pages) Index(c *gin.Context) {
	var items []models.MenuItem
	if err := p.Client.As(c.Request).Fetch(c.Request.Context(), backend.ListMenuItemsQuery(), &items); err != nil {
		// already reported by the client; render an empty table
		items = nil
	}

	pg := p.page(c, "UCSB Dining Commons Menu Items")
	c.HTML(http.StatusOK, "index.html", indexPage{
		page:      pg,
		CanCreate: models.HasRole(pg.User, models.RoleAdmin),
		Table:     BuildTable(TableTestID, VisibleColumns(pg.User), items),
	})
}

// Export handles GET /ucsb-dining-commons-menu-items/export
func (p *Pages) Export(c *gin.Context) {
	data, err := p.Client.As(c.Request).Download(c.Request.Context(), backend.ExportMenuItemsRequest())
	if err != nil {
		c.Redirect(http.StatusSeeOther, IndexPath)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="menu-items.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// menuItemForm holds the submitted form fields.
type menuItemForm struct {
	Name              string `form:"name"`
	DiningCommonsCode string `form:"diningCommonsCode"`
	Station           string `form:"station"`
}

func formFromItem(m models.MenuItem) menuItemForm {
	return menuItemForm{Name: m.Name, DiningCommonsCode: m.DiningCommonsCode, Station: m.Station}
}

func (f menuItemForm) validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Name is required."
	}
	if strings.TrimSpace(f.DiningCommonsCode) == "" {
		errs["diningCommonsCode"] = "Dining Commons Code is required."
	}
	if strings.TrimSpace(f.Station) == "" {
		errs["station"] = "Station is required."
	}
	return errs
}

type formPage struct {
	page
	Heading     string
	Action      string
	ButtonLabel string
	ShowForm    bool
	ID          int64
	Values      menuItemForm
	Errors      map[string]string
}

func (p *Pages) renderForm(c *gin.Context, status int, fp formPage) {
	if fp.Errors == nil {
		fp.Errors = map[string]string{}
	}
	fp.page = p.page(c, fp.Heading)
	c.HTML(status, "form.html", fp)
}

func createFormPage() formPage {
	return formPage{
		Heading:     "Create New Menu Item",
		Action:      CreatePath,
		ButtonLabel: "Create",
		ShowForm:    true,
	}
}

// CreateForm handles GET /ucsb-dining-commons-menu-items/create
func (p *Pages) CreateForm(c *gin.Context) {
	p.renderForm(c, http.StatusOK, createFormPage())
}

// Create handles POST /ucsb-dining-commons-menu-items/create
func (p *Pages) Create(c *gin.Context) {
	fp := createFormPage()
	if err := c.ShouldBind(&fp.Values); err != nil {
		p.renderForm(c, http.StatusBadRequest, fp)
		return
	}
	if fp.Errors = fp.Values.validate(); len(fp.Errors) > 0 {
		p.renderForm(c, http.StatusBadRequest, fp)
		return
	}

	item := models.MenuItem{
		Name:              fp.Values.Name,
		DiningCommonsCode: fp.Values.DiningCommonsCode,
		Station:           fp.Values.Station,
	}
	_, err := backend.Mutate(c.Request.Context(), p.Client.As(c.Request), backend.CreateMenuItem, item,
		backend.Callbacks[models.MenuItem]{
			OnSuccess: func(created models.MenuItem) {
				p.Sessions.AddFlash(c, fmt.Sprintf("New menu item Created - id: %d name: %s", created.ID, created.Name))
			},
		})
	if err != nil {
		p.renderForm(c, http.StatusBadGateway, fp)
		return
	}
	c.Redirect(http.StatusSeeOther, IndexPath)
}

func editFormPage(id int64) formPage {
	return formPage{
		Heading:     "Edit UCSB Dining Commons Menu Item",
		Action:      EditPath(id),
		ButtonLabel: "Update",
		ID:          id,
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// EditForm handles GET /ucsb-dining-commons-menu-items/edit/:id. The form
// is only rendered once the item has been fetched.
func (p *Pages) EditForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fp := editFormPage(id)

	var item models.MenuItem
	if err := p.Client.As(c.Request).Fetch(c.Request.Context(), backend.MenuItemQuery(id), &item); err == nil {
		fp.ShowForm = true
		fp.Values = formFromItem(item)
	}
	p.renderForm(c, http.StatusOK, fp)
}

// Edit handles POST /ucsb-dining-commons-menu-items/edit/:id
func (p *Pages) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fp := editFormPage(id)
	fp.ShowForm = true
	if err := c.ShouldBind(&fp.Values); err != nil {
		p.renderForm(c, http.StatusBadRequest, fp)
		return
	}
	if fp.Errors = fp.Values.validate(); len(fp.Errors) > 0 {
		p.renderForm(c, http.StatusBadRequest, fp)
		return
	}

	item := models.MenuItem{
		ID:                id,
		Name:              fp.Values.Name,
		DiningCommonsCode: fp.Values.DiningCommonsCode,
		Station:           fp.Values.Station,
	}
	_, err := backend.Mutate(c.Request.Context(), p.Client.As(c.Request), backend.UpdateMenuItem, item,
		backend.Callbacks[models.MenuItem]{
			OnSuccess: func(updated models.MenuItem) {
				p.Sessions.AddFlash(c, fmt.Sprintf("UCSB Dining Commons Menu Item Updated - id: %d name: %s", updated.ID, updated.Name))
			},
		})
	if err != nil {
		p.renderForm(c, http.StatusBadGateway, fp)
		return
	}
	c.Redirect(http.StatusSeeOther, IndexPath)
}

// Delete handles POST /ucsb-dining-commons-menu-items/delete/:id, the
// target of the table's Delete button.
func (p *Pages) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	_, _ = backend.Mutate(c.Request.Context(), p.Client.As(c.Request), backend.DeleteMenuItem, models.MenuItem{ID: id},
		backend.Callbacks[models.GenericMessage]{
			OnSuccess: func(msg models.GenericMessage) {
				logger.GetLogger().Infow(msg.Message)
				p.Sessions.AddFlash(c, msg.Message)
			},
		})
	c.Redirect(http.StatusSeeOther, IndexPath)
}

type loginPage struct {
	page
	Username string
	Error    string
}

// LoginForm handles GET /login
func (p *Pages) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", loginPage{page: p.page(c, "Log In")})
}

// Login handles POST /login
func (p *Pages) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, ok := p.Users.Authenticate(username, password)
	if !ok {
		c.HTML(http.StatusUnauthorized, "login.html", loginPage{
			page:     p.page(c, "Log In"),
			Username: username,
			Error:    "Login failed: wrong username or password.",
		})
		return
	}
	if err := p.Sessions.Login(c, user); err != nil {
		logger.GetLogger().Errorw("failed to save session", "error", err)
		c.String(http.StatusInternalServerError, "Failed to login.")
		return
	}
	c.Redirect(http.StatusSeeOther, IndexPath)
}

// Logout handles POST /logout
func (p *Pages) Logout(c *gin.Context) {
	if err := p.Sessions.Logout(c); err != nil {
		logger.GetLogger().Errorw("failed to save session", "error", err)
		c.String(http.StatusInternalServerError, "Failed to log out.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}
