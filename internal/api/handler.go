package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/auth"
	"github.com/yakoovad/productsite/internal/service"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	flowCookie    = "squeak_flow"
	sessionCookie = "squeak_session"

	defaultSessionTTL = 7 * 24 * time.Hour
)

type Handler struct {
	pages *service.PageService
	team  *service.TeamService
	auth  *service.AuthService

	healthChecker HealthChecker
	tmplFunc      ExecuteTemplateFunc

	sessionTTL    time.Duration
	authPerMinute int
	widget        WidgetOptions

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		tmplFunc:   views.ExecuteTemplate,
		sessionTTL: defaultSessionTTL,
		widget:     defaultWidgetOptions,
		logger:     logger,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithPageService(pages *service.PageService) *Handler {
	h.pages = pages
	return h
}

func (h *Handler) WithTeamService(team *service.TeamService) *Handler {
	h.team = team
	return h
}

func (h *Handler) WithAuthService(a *service.AuthService) *Handler {
	h.auth = a
	return h
}

func (h *Handler) WithSessionTTL(ttl time.Duration) *Handler {
	h.sessionTTL = ttl
	return h
}

// WithWidgetOptions overrides the widget button labels. Empty labels keep
// the defaults.
func (h *Handler) WithWidgetOptions(o WidgetOptions) *Handler {
	if o.LoginButton != "" {
		h.widget.LoginButton = o.LoginButton
	}
	if o.SignUpButton != "" {
		h.widget.SignUpButton = o.SignUpButton
	}
	return h
}

// WithAuthRateLimit limits auth form posts per client. Zero disables it.
func (h *Handler) WithAuthRateLimit(perMinute int) *Handler {
	h.authPerMinute = perMinute
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if h.healthChecker != nil {
		e.GET("/health", h.healthChecker.HealthCheck())
	}

	e.GET("/product/*", h.GetProductPage)
	e.GET("/api/pages/*", h.GetComposedPage)
	e.GET("/api/team/roster", h.GetRoster)

	e.GET("/squeak/auth", h.GetAuthWidget)

	authForms := e.Group("/squeak/auth")
	if h.authPerMinute > 0 {
		store := middleware.NewRateLimiterMemoryStore(rate.Limit(float64(h.authPerMinute) / 60))
		authForms.Use(middleware.RateLimiter(store))
	}
	authForms.POST("/view", h.SetAuthView)
	authForms.POST("/submit", h.SubmitAuth)

	adminSecurity := e.Group("/admin", AuthMiddleware(auth.TokenTypeAdmin))
	adminSecurity.POST("/cache/purge", h.PurgeCache)
}

func (h *Handler) GetProductPage(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	slug := pageSlug(e)
	l.Debug("rendering product page", zap.String("slug", slug))

	if slug == "" {
		return h.renderError(e, service.NewError(service.ErrorCodeNotFound, "page not found"))
	}

	out, err := h.pages.Render(e.Request().Context(), slug)
	if err != nil {
		l.Error("failed to render product page", zap.String("slug", slug), zap.Any("error", err))
		return h.renderError(e, err)
	}

	return e.HTMLBlob(http.StatusOK, out)
}

func (h *Handler) GetComposedPage(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	slug := pageSlug(e)
	if slug == "" {
		return transportError(e, service.NewError(service.ErrorCodeNotFound, "page not found"))
	}

	page, err := h.pages.Compose(e.Request().Context(), slug)
	if err != nil {
		l.Error("failed to compose page", zap.String("slug", slug), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, page)
}

func (h *Handler) GetRoster(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Team string `query:"team_name" validate:"required"`
	}

	if err := decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}

	l.Info("getting roster", zap.String("team_name", req.Team))

	r, err := h.team.Roster(e.Request().Context(), req.Team)
	if err != nil {
		l.Error("failed to get roster", zap.String("team_name", req.Team), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, r)
}

// GetAuthWidget renders the widget, reusing the visitor's flow when the
// cookie still points at a live one.
func (h *Handler) GetAuthWidget(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	view := e.QueryParam("view")
	token := e.QueryParam("token")

	res, err := h.auth.Resume(e.Request().Context(), flowID(e), view, token)
	if err != nil {
		l.Warn("failed to open auth flow", zap.String("view", view), zap.Any("error", err))
		return h.authError(e, err)
	}

	return h.respondAuth(e, res)
}

func (h *Handler) SetAuthView(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		View string `json:"view" form:"view" validate:"required"`
	}

	if err := decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.authError(e, err)
	}

	res, err := h.auth.SetView(e.Request().Context(), flowID(e), req.View)
	if err != nil {
		l.Warn("failed to switch auth view", zap.String("view", req.View), zap.Any("error", err))
		return h.authError(e, err)
	}

	return h.respondAuth(e, res)
}

func (h *Handler) SubmitAuth(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	fields := auth.Fields{}
	if err := e.Bind(&fields); err != nil {
		l.Error("invalid request", zap.Error(err))
		return h.authError(e, service.NewError(service.ErrorCodeInvalidBody, "invalid request body"))
	}
	delete(fields, "flow_id")

	id := flowID(e)
	res, err := h.auth.Submit(e.Request().Context(), id, fields)
	if err != nil {
		l.Warn("auth submit failed", zap.String("flow_id", id), zap.Any("error", err))
		return h.authError(e, err)
	}

	if res.User != nil {
		token, tokenErr := auth.GenerateToken(auth.TokenTypeMember, res.User.ID, h.sessionTTL)
		if tokenErr != nil {
			l.Error("failed to issue session token", zap.Error(tokenErr))
			return h.authError(e, service.NewError(service.ErrorCodeUnspecified, "failed to start session"))
		}
		e.SetCookie(&http.Cookie{
			Name:     sessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			MaxAge:   int(h.sessionTTL.Seconds()),
			SameSite: http.SameSiteLaxMode,
		})

		// The widget is done once the visitor is signed in.
		h.auth.Close(e.Request().Context(), id)
		e.SetCookie(&http.Cookie{Name: flowCookie, Path: "/squeak", MaxAge: -1})
	}

	return h.respondAuth(e, res)
}

func (h *Handler) PurgeCache(e echo.Context) error {
	n := h.pages.Purge(e.Request().Context())
	return e.JSON(http.StatusOK, map[string]int{"purged": n})
}

func (h *Handler) respondAuth(e echo.Context, res *service.AuthResult) error {
	if res.User == nil {
		e.SetCookie(&http.Cookie{
			Name:     flowCookie,
			Value:    res.ID,
			Path:     "/squeak",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if wantsJSON(e) {
		return e.JSON(http.StatusOK, res)
	}
	return h.render(e, http.StatusOK, "auth.html", newWidgetData(res, h.widget, e.QueryParams()))
}

func (h *Handler) authError(e echo.Context, err *service.Error) error {
	if wantsJSON(e) {
		return transportError(e, err)
	}
	return h.renderError(e, err)
}

func (h *Handler) renderError(e echo.Context, err *service.Error) error {
	return h.render(e, statusFor(err.Code), "error.html", err)
}

func (h *Handler) render(e echo.Context, status int, name string, data any) error {
	res := e.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	res.WriteHeader(status)
	if err := h.tmplFunc(res, name, data); err != nil {
		logger.FromContext(e.Request().Context()).Error("failed to render template", zap.String("template", name), zap.Error(err))
	}
	return nil
}

func pageSlug(e echo.Context) string {
	return strings.Trim(e.Param("*"), "/")
}

func flowID(e echo.Context) string {
	if c, err := e.Cookie(flowCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return e.QueryParam("flow_id")
}

func wantsJSON(e echo.Context) bool {
	return strings.Contains(e.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func bindStep[T any](e echo.Context, req *T) error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}
	return nil
}

func validateStep[T any](e echo.Context, req *T) error {
	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}

func decodeRequest[T any](e echo.Context, req *T) *service.Error {
	err := ProcessRequest(e, req, bindStep[T], validateStep[T])
	if err == nil {
		return nil
	}

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return service.NewError(service.ErrorCodeInvalidBody, err.Error())
}

func statusFor(code service.ErrorCode) int {
	switch code {
	case service.ErrorCodeNotFound:
		return http.StatusNotFound
	case service.ErrorCodeInvalidBody:
		return http.StatusBadRequest
	case service.ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case service.ErrorCodeSubmitBlocked:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func transportError(e echo.Context, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	return e.JSON(statusFor(err.Code), response)
}
