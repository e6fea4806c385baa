// Package docs registers the OpenAPI description served at /swagger/*.
package docs

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
        "/api/v1/users/register": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Register a new user",
                "parameters": [
                    {"type": "string", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "name": "fullName", "in": "formData", "required": true},
                    {"type": "string", "name": "password", "in": "formData", "required": true},
                    {"type": "file", "name": "avatar", "in": "formData", "required": true},
                    {"type": "file", "name": "coverImage", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Username or email already taken"},
                    "500": {"description": "Upload or persistence failure"}
                }
            }
        },
        "/api/v1/users/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Login",
                "responses": {
                    "200": {"description": "Token pair and public account"},
                    "400": {"description": "Validation error"},
                    "401": {"description": "Invalid credentials"},
                    "404": {"description": "Unknown account"}
                }
            }
        },
        "/api/v1/users/refresh-token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Refresh the access token",
                "responses": {
                    "200": {"description": "Rotated token pair"},
                    "401": {"description": "Invalid or revoked refresh token"}
                }
            }
        },
        "/api/v1/users/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Logout",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Session revoked, cookies cleared"},
                    "401": {"description": "Missing or invalid access token"}
                }
            }
        },
        "/api/v1/users/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Public account projection"},
                    "401": {"description": "Missing or invalid access token"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Account Service API",
	Description:      "Authentication-centric user-account service: register, login, logout, token refresh.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
