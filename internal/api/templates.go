package api

import (
	"embed"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/yakoovad/productsite/internal/auth"
	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/internal/service"
)

//go:embed templates/*.html
var templateFiles embed.FS

var views = template.Must(template.New("").ParseFS(templateFiles, "templates/*.html"))

type ExecuteTemplateFunc func(wr io.Writer, name string, data any) error

var viewHeadings = map[auth.View]string{
	auth.ViewSignIn:         "Login",
	auth.ViewSignUp:         "Sign up",
	auth.ViewForgotPassword: "Forgot password",
	auth.ViewResetPassword:  "Set a new password",
}

const (
	authViewPath   = "/squeak/auth/view"
	authSubmitPath = "/squeak/auth/submit"
)

// WidgetOptions are the site-wide widget settings.
type WidgetOptions struct {
	LoginButton  string
	SignUpButton string
}

var defaultWidgetOptions = WidgetOptions{LoginButton: "Login", SignUpButton: "Sign up"}

// widgetParams are the query parameters the embedding page passes to the
// widget. Form actions carry them so they survive view switches and submits.
var widgetParams = []string{"banner", "subject", "question"}

type widgetTab struct {
	View   auth.View
	Label  string
	Active bool
}

type postPreview struct {
	Subject  string
	Question string
}

type widgetData struct {
	ID         string
	Heading    string
	ButtonText string
	State      auth.State
	Tabs       []widgetTab
	User       *model.User

	Banner       bool
	Preview      *postPreview
	ViewAction   template.URL
	SubmitAction template.URL
}

func newWidgetData(res *service.AuthResult, opts WidgetOptions, query url.Values) widgetData {
	kept := url.Values{}
	for _, k := range widgetParams {
		if v := query.Get(k); v != "" {
			kept.Set(k, v)
		}
	}

	data := widgetData{
		ID:           res.ID,
		Heading:      viewHeadings[res.State.View],
		ButtonText:   buttonText(res.State.View, opts),
		State:        res.State,
		User:         res.User,
		Banner:       true,
		ViewAction:   withQuery(authViewPath, kept),
		SubmitAction: withQuery(authSubmitPath, kept),
	}
	if b, err := strconv.ParseBool(kept.Get("banner")); err == nil {
		data.Banner = b
	}
	if kept.Has("subject") || kept.Has("question") {
		data.Preview = &postPreview{Subject: kept.Get("subject"), Question: kept.Get("question")}
	}

	for _, v := range []auth.View{auth.ViewSignIn, auth.ViewSignUp} {
		data.Tabs = append(data.Tabs, widgetTab{View: v, Label: viewHeadings[v], Active: v == res.State.View})
	}
	return data
}

func buttonText(view auth.View, opts WidgetOptions) string {
	switch view {
	case auth.ViewSignUp:
		return opts.SignUpButton
	case auth.ViewForgotPassword:
		return "Send reset link"
	case auth.ViewResetPassword:
		return "Reset password"
	default:
		return opts.LoginButton
	}
}

func withQuery(path string, q url.Values) template.URL {
	if len(q) == 0 {
		return template.URL(path)
	}
	return template.URL(path + "?" + q.Encode())
}

// Field returns the value typed into name. Passwords are never echoed.
func (d widgetData) Field(name string) string {
	if name == "password" {
		return ""
	}
	return d.State.Fields[name]
}
