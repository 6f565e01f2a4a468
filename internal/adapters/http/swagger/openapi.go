package swagger

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

const openAPIVersion = "3.0.3"

// Info describes the documented API.
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Operation is the route metadata a document is generated from.
type Operation struct {
	Method      string
	Path        string // chi pattern, e.g. /books/{id}
	OperationID string
	Summary     string
	Tags        []string
	// RequestSchema names a schema in Schemas sent as the JSON body; empty for no body.
	RequestSchema string
	// ResponseSchema names the schema of the 200 response.
	ResponseSchema string
	// Errors lists the documented error statuses, e.g. 400 and 500.
	Errors []int
}

// Document is an OpenAPI 3 description.
type Document struct {
	OpenAPI    string                           `json:"openapi" yaml:"openapi"`
	Info       Info                             `json:"info" yaml:"info"`
	Paths      map[string]map[string]pathMethod `json:"paths" yaml:"paths"`
	Components components                       `json:"components" yaml:"components"`
}

type components struct {
	Schemas map[string]Schema `json:"schemas" yaml:"schemas"`
}

type pathMethod struct {
	OperationID string              `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags        []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters  []parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *requestBody        `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]response `json:"responses" yaml:"responses"`
}

type parameter struct {
	Name     string `json:"name" yaml:"name"`
	In       string `json:"in" yaml:"in"`
	Required bool   `json:"required" yaml:"required"`
	Schema   Schema `json:"schema" yaml:"schema"`
}

type requestBody struct {
	Required bool                 `json:"required" yaml:"required"`
	Content  map[string]mediaType `json:"content" yaml:"content"`
}

type response struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]mediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type mediaType struct {
	Schema Schema `json:"schema" yaml:"schema"`
}

// Schema is the subset of JSON Schema used by the books API.
type Schema struct {
	Ref        string            `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type       string            `json:"type,omitempty" yaml:"type,omitempty"`
	Format     string            `json:"format,omitempty" yaml:"format,omitempty"`
	Required   []string          `json:"required,omitempty" yaml:"required,omitempty"`
	Properties map[string]Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items      *Schema           `json:"items,omitempty" yaml:"items,omitempty"`
}

const jsonContent = "application/json"

// Schemas holds the components every books document carries.
var Schemas = map[string]Schema{ //nolint:gochecknoglobals // static schema table
	"Book": {
		Type:     "object",
		Required: []string{"id", "title", "author"},
		Properties: map[string]Schema{
			"id":     {Type: "integer", Format: "int64"},
			"title":  {Type: "string"},
			"author": {Type: "string"},
		},
	},
	"BookInput": {
		Type:     "object",
		Required: []string{"title", "author"},
		Properties: map[string]Schema{
			"title":  {Type: "string"},
			"author": {Type: "string"},
		},
	},
	"Books": {
		Type:  "array",
		Items: &Schema{Ref: ref("Book")},
	},
	"FieldError": {
		Type: "object",
		Properties: map[string]Schema{
			"field":   {Type: "string"},
			"code":    {Type: "string"},
			"message": {Type: "string"},
		},
	},
	"Error": {
		Type:     "object",
		Required: []string{"code", "message"},
		Properties: map[string]Schema{
			"code":         {Type: "string"},
			"message":      {Type: "string"},
			"error_id":     {Type: "string", Format: "uuid"},
			"field_errors": {Type: "array", Items: &Schema{Ref: ref("FieldError")}},
		},
	},
}

func ref(name string) string {
	return "#/components/schemas/" + name
}

// Build generates the document for ops.
func Build(info Info, ops []Operation) Document {
	doc := Document{
		OpenAPI:    openAPIVersion,
		Info:       info,
		Paths:      make(map[string]map[string]pathMethod, len(ops)),
		Components: components{Schemas: Schemas},
	}
	for _, op := range ops {
		methods, ok := doc.Paths[op.Path]
		if !ok {
			methods = map[string]pathMethod{}
			doc.Paths[op.Path] = methods
		}
		methods[strings.ToLower(op.Method)] = buildMethod(op)
	}
	return doc
}

func buildMethod(op Operation) pathMethod {
	m := pathMethod{
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Tags:        op.Tags,
		Parameters:  pathParameters(op.Path),
		Responses: map[string]response{
			"200": {
				Description: "Successful",
				Content:     map[string]mediaType{jsonContent: {Schema: Schema{Ref: ref(op.ResponseSchema)}}},
			},
		},
	}
	if op.RequestSchema != "" {
		m.RequestBody = &requestBody{
			Required: true,
			Content:  map[string]mediaType{jsonContent: {Schema: Schema{Ref: ref(op.RequestSchema)}}},
		}
	}
	codes := append([]int(nil), op.Errors...)
	sort.Ints(codes)
	for _, code := range codes {
		m.Responses[statusKey(code)] = response{
			Description: statusDescription(code),
			Content:     map[string]mediaType{jsonContent: {Schema: Schema{Ref: ref("Error")}}},
		}
	}
	return m
}

// pathParameters derives parameters from {name} segments. Every path parameter of the
// books API is an integer id.
func pathParameters(path string) []parameter {
	var params []parameter
	for _, seg := range strings.Split(path, "/") {
		if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
			params = append(params, parameter{
				Name:     seg[1 : len(seg)-1],
				In:       "path",
				Required: true,
				Schema:   Schema{Type: "integer", Format: "int64"},
			})
		}
	}
	return params
}

func statusKey(code int) string {
	return strconv.Itoa(code)
}

func statusDescription(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Error"
}
