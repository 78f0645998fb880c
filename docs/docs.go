// Package docs registers the OpenAPI document served at /swagger/index.html.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "tags": [
        {"name": "Auth", "description": "Registration, login and tokens"},
        {"name": "Projects", "description": "Projects, team members and activity"},
        {"name": "Tasks", "description": "Tasks, assignment and status workflow"},
        {"name": "Comments", "description": "Task comments"}
    ],
    "paths": {
        "/api/auth/register": {"post": {"tags": ["Auth"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/api/auth/login": {"post": {"tags": ["Auth"], "summary": "Obtain an access/refresh token pair", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/auth/token/refresh": {"post": {"tags": ["Auth"], "summary": "Exchange a refresh token for a new access token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/auth/logout": {"post": {"tags": ["Auth"], "security": [{"BearerAuth": []}], "summary": "Revoke a refresh token", "responses": {"200": {"description": "OK"}}}},
        "/api/auth/user": {"get": {"tags": ["Auth"], "security": [{"BearerAuth": []}], "summary": "Current user", "responses": {"200": {"description": "OK"}}}},
        "/api/projects": {
            "get": {"tags": ["Projects"], "security": [{"BearerAuth": []}], "summary": "List the caller's projects", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Projects"], "security": [{"BearerAuth": []}], "summary": "Create a project owned by the caller", "responses": {"201": {"description": "Created"}}}
        },
        "/api/projects/{id}": {
            "get": {"tags": ["Projects"], "security": [{"BearerAuth": []}], "summary": "Get a project", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Projects"], "security": [{"BearerAuth": []}], "summary": "Update a project (owner only)", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["Projects"], "security": [{"BearerAuth": []}], "summary": "Delete a project (owner only)", "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/api/projects/{id}/members": {
            "get": {"tags": ["Projects"], "security": [{"BearerAuth": []}], "summary": "List project members", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Projects"], "security": [{"BearerAuth": []}], "summary": "Add a member (owner only)", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/projects/{id}/members/{user_id}": {"delete": {"tags": ["Projects"], "security": [{"BearerAuth": []}], "summary": "Remove a member; their tasks are unassigned", "responses": {"204": {"description": "No Content"}}}},
        "/api/projects/{id}/activity": {"get": {"tags": ["Projects"], "security": [{"BearerAuth": []}], "summary": "Project activity feed, newest first", "responses": {"200": {"description": "OK"}}}},
        "/api/tasks": {
            "get": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "List tasks visible to the caller", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "post": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "Create a task", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/api/tasks/{id}": {
            "get": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "Get a task", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "Edit a task (owner only)", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "Delete a task (owner only)", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/tasks/{id}/assign": {
            "post": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "Assign or unassign a task", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}},
            "delete": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "Unassign a task", "responses": {"200": {"description": "OK"}}}
        },
        "/api/tasks/{id}/change_status": {"post": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "Move the task along its workflow", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/api/tasks/{id}/comments": {
            "get": {"tags": ["Comments"], "security": [{"BearerAuth": []}], "summary": "List comments, newest first", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Comments"], "security": [{"BearerAuth": []}], "summary": "Comment on a task", "responses": {"201": {"description": "Created"}}}
        },
        "/api/comments/{id}": {
            "put": {"tags": ["Comments"], "security": [{"BearerAuth": []}], "summary": "Edit a comment (author only)", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Comments"], "security": [{"BearerAuth": []}], "summary": "Delete a comment", "responses": {"204": {"description": "No Content"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "TaskMaster API",
	Description:      "Project and task management API: projects, team members, tasks with a status workflow, comments and activity logging.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
