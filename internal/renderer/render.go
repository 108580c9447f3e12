package renderer

import (
	"html/template"
	"io"
	"sort"

	"github.com/driftlab-studio/studio-cms/internal/models"
)

// formTemplate renders one widget per field type. The disabled mode backs
// the authoring preview: same markup, no usable inputs, no submit button.
const formTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<main class="form-page">
	<h1>{{.Title}}</h1>
	{{with .Description}}<p class="form-description">{{.}}</p>{{end}}
	<form method="post" action="{{.Action}}" enctype="multipart/form-data">
	{{range .Fields}}
		{{if eq .Kind "heading"}}
		<h2>{{.Label}}</h2>
		{{else if eq .Kind "paragraph"}}
		<p>{{.Label}}</p>
		{{else}}
		<div class="field{{if .Required}} required{{end}}">
			<label for="{{.ID}}">{{.Label}}{{if .Required}} *{{end}}</label>
			{{if eq .Kind "textarea"}}
			<textarea id="{{.ID}}" name="{{.ID}}" placeholder="{{.Placeholder}}"{{if .Required}} required{{end}}{{if $.Disabled}} disabled{{end}}></textarea>
			{{else if eq .Kind "select"}}
			<select id="{{.ID}}" name="{{.ID}}"{{if .Required}} required{{end}}{{if $.Disabled}} disabled{{end}}>
				<option value="">Choose…</option>
				{{range .Options}}<option value="{{.}}">{{.}}</option>{{end}}
			</select>
			{{else if eq .Kind "radio"}}
			{{$f := .}}
			{{range .Options}}
			<label class="option"><input type="radio" name="{{$f.ID}}" value="{{.}}"{{if $.Disabled}} disabled{{end}}> {{.}}</label>
			{{end}}
			{{else if eq .Kind "checkbox"}}
			{{$f := .}}
			{{range .Options}}
			<label class="option"><input type="checkbox" name="{{$f.ID}}" value="{{.}}"{{if $.Disabled}} disabled{{end}}> {{.}}</label>
			{{end}}
			{{else if eq .Kind "file"}}
			<input type="file" id="{{.ID}}" name="{{.ID}}" multiple{{if $.Disabled}} disabled{{end}}>
			{{else}}
			<input type="{{.InputType}}" id="{{.ID}}" name="{{.ID}}" placeholder="{{.Placeholder}}"{{if .Required}} required{{end}}{{if $.Disabled}} disabled{{end}}>
			{{end}}
			{{with .HelperText}}<span class="helper">{{.}}</span>{{end}}
		</div>
		{{end}}
	{{end}}
	{{if not .Disabled}}
	<button type="submit">{{.SubmitText}}</button>
	{{end}}
	</form>
</main>
</body>
</html>
`

var formTmpl = template.Must(template.New("form").Parse(formTemplate))

type fieldView struct {
	ID          string
	Kind        string
	InputType   string
	Label       string
	Placeholder string
	HelperText  string
	Required    bool
	Options     []string
}

type formView struct {
	Title       string
	Description string
	Action      string
	SubmitText  string
	Disabled    bool
	Fields      []fieldView
}

// inputTypes maps field types onto HTML input type attributes where the
// widget is a plain single-line input.
var inputTypes = map[models.FieldType]string{
	models.FieldText:  "text",
	models.FieldEmail: "email",
	models.FieldPhone: "tel",
}

// Render writes the HTML for a form. With disabled set, every input is
// inert and the submit button is omitted; the builder preview uses this to
// show unsaved fields without a round trip.
func Render(w io.Writer, form models.Form, action string, disabled bool) error {
	settings := form.Config()

	fields := make([]models.FormField, len(form.Fields))
	copy(fields, form.Fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })

	view := formView{
		Title:       form.Title,
		Description: form.Description,
		Action:      action,
		SubmitText:  settings.SubmitButtonText,
		Disabled:    disabled,
	}
	if view.SubmitText == "" {
		view.SubmitText = "Submit"
	}

	for _, f := range fields {
		fv := fieldView{
			ID:          f.ID,
			Kind:        string(f.Type),
			Label:       f.Label,
			Placeholder: f.Placeholder,
			HelperText:  f.HelperText,
			Required:    f.Required,
			Options:     f.Options,
		}
		if t, ok := inputTypes[f.Type]; ok {
			fv.InputType = t
		}
		view.Fields = append(view.Fields, fv)
	}

	return formTmpl.Execute(w, view)
}
