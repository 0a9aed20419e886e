// Package docs 接口文档，与各 handler 上的 swag 注解保持一致
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/login": {
            "post": {
                "tags": ["认证"],
                "summary": "用户登录",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "tags": ["认证"],
                "summary": "退出登录",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/dashboard/home": {
            "get": {
                "tags": ["认证"],
                "summary": "登录后首页",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/chat/conversation": {
            "post": {
                "tags": ["对话"],
                "summary": "创建会话",
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created"},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/chat/conversations": {
            "get": {
                "tags": ["对话"],
                "summary": "会话列表",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/chat/conversation/{id}/message": {
            "post": {
                "tags": ["对话"],
                "summary": "发送消息",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true, "description": "会话ID"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/chat.SendMessageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/chat/conversation/{id}/messages": {
            "get": {
                "tags": ["对话"],
                "summary": "消息历史",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true, "description": "会话ID"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "auth.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "chat.SendMessageRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "message": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "kind": {"type": "string"},
                "message": {"type": "string"},
                "detail": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "AI Chatbot API",
	Description:      "Conversation backend on top of a hosted assistant. /api/chat and /api/dashboard require the HttpOnly token cookie set by /api/auth/login.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
