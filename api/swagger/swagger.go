// Package swagger registers the OpenAPI description served at /docs.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Authenticate with email, password and selected role",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "session issued"},
                    "400": {"description": "missing fields or invalid role"},
                    "401": {"description": "unknown email or wrong password"},
                    "403": {"description": "role mismatch or inactive account"}
                }
            }
        },
        "/logout": {
            "get": {
                "tags": ["auth"],
                "summary": "Destroy the session and return to the entry page",
                "responses": {"302": {"description": "redirect to /"}}
            }
        },
        "/api/users/{role}": {
            "get": {
                "tags": ["auth"],
                "summary": "List active accounts of a role",
                "parameters": [{"name": "role", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "active accounts"},
                    "400": {"description": "invalid role"}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": ["admin"],
                "summary": "System-wide dashboard",
                "responses": {"200": {"description": "dashboard"}}
            }
        },
        "/admin/staff": {
            "get": {"tags": ["admin"], "summary": "List staff accounts", "responses": {"200": {"description": "staff"}}},
            "post": {"tags": ["admin"], "summary": "Create a staff account", "responses": {"201": {"description": "created"}, "400": {"description": "validation or duplicate email"}}}
        },
        "/admin/students": {
            "get": {"tags": ["admin"], "summary": "List student accounts", "responses": {"200": {"description": "students"}}},
            "post": {"tags": ["admin"], "summary": "Create a student account", "responses": {"201": {"description": "created"}, "400": {"description": "validation or duplicate email"}}}
        },
        "/admin/assignments": {
            "get": {"tags": ["admin"], "summary": "Assignment overview", "responses": {"200": {"description": "assignments"}}},
            "post": {"tags": ["admin"], "summary": "Assign students to a staff member", "responses": {"201": {"description": "assigned"}, "400": {"description": "validation"}}}
        },
        "/admin/feedback": {
            "get": {"tags": ["admin"], "summary": "All feedback with filter and search", "responses": {"200": {"description": "feedback"}}}
        },
        "/admin/feedback/export": {
            "get": {
                "tags": ["admin"],
                "summary": "Download the feedback overview as CSV or PDF",
                "parameters": [{"name": "format", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "file"}, "400": {"description": "unsupported format"}}
            }
        },
        "/staff/dashboard": {
            "get": {"tags": ["staff"], "summary": "Staff dashboard", "responses": {"200": {"description": "dashboard"}}}
        },
        "/staff/feedback": {
            "get": {"tags": ["staff"], "summary": "Feedback addressed to the staff member", "responses": {"200": {"description": "feedback"}}}
        },
        "/staff/feedback/{id}/reply": {
            "post": {
                "tags": ["staff"],
                "summary": "Reply to a feedback entry",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "reply created"}, "403": {"description": "not the addressed staff member"}}
            }
        },
        "/staff/replies/{id}/delete": {
            "post": {
                "tags": ["staff"],
                "summary": "Delete an own reply",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "deleted"}, "403": {"description": "not the author"}, "404": {"description": "unknown reply"}}
            }
        },
        "/student/dashboard": {
            "get": {"tags": ["student"], "summary": "Student dashboard", "responses": {"200": {"description": "dashboard"}}}
        },
        "/student/submit": {
            "post": {
                "tags": ["student"],
                "summary": "Submit feedback to the assigned staff member",
                "responses": {"201": {"description": "submitted"}, "400": {"description": "validation or no assignment"}}
            }
        },
        "/student/feedback": {
            "get": {"tags": ["student"], "summary": "The student's own feedback", "responses": {"200": {"description": "feedback"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Student Feedback Management API",
	Description:      "Role-based feedback exchange between students and staff.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
