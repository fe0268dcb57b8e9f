// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go`.
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
        "/games": {
            "get": {
                "description": "Returns a page of games, newest first, optionally filtered by a case-insensitive title search and by categories.",
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "List games",
                "parameters": [
                    {"type": "string", "description": "Search in game titles", "name": "q", "in": "query"},
                    {"type": "string", "description": "Category slugs, comma-separated or repeated", "name": "categories", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 12, "description": "Items per page (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.GameListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.Envelope"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/apperr.Envelope"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/apperr.Envelope"}}
                }
            }
        },
        "/games/by-ids": {
            "get": {
                "description": "Returns the games for the given ids in the order of the ids. Unknown ids are skipped.",
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Get games by ids",
                "parameters": [
                    {"type": "string", "description": "Comma-separated game ids (max 100)", "name": "ids", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.GamesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.Envelope"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/apperr.Envelope"}}
                }
            }
        },
        "/games/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Get a single game",
                "parameters": [
                    {"type": "string", "description": "Game slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.GameResponse"}},
                    "404": {"description": "Game not found", "schema": {"$ref": "#/definitions/apperr.Envelope"}}
                }
            }
        },
        "/games/{slug}/related": {
            "get": {
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Get related games",
                "parameters": [
                    {"type": "string", "description": "Game slug", "name": "slug", "in": "path", "required": true},
                    {"type": "integer", "default": 6, "description": "Number of games (max 24)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.GamesResponse"}},
                    "404": {"description": "Game not found", "schema": {"$ref": "#/definitions/apperr.Envelope"}}
                }
            }
        },
        "/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CategoriesResponse"}}
                }
            }
        },
        "/categories/{slug}/games": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List the games of a category",
                "parameters": [
                    {"type": "string", "description": "Category slug", "name": "slug", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 12, "description": "Items per page (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CategoryGamesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.Envelope"}}
                }
            }
        },
        "/ratings/{gameId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ratings"],
                "summary": "Get the rating of a game",
                "parameters": [
                    {"type": "integer", "description": "Game ID", "name": "gameId", "in": "path", "required": true},
                    {"type": "string", "description": "Client fingerprint", "name": "fingerprint", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RatingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.Envelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ratings"],
                "summary": "Rate a game",
                "parameters": [
                    {"type": "integer", "description": "Game ID", "name": "gameId", "in": "path", "required": true},
                    {"description": "Rating", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RatingInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SubmitRatingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.Envelope"}},
                    "429": {"description": "Too many submissions", "schema": {"$ref": "#/definitions/apperr.Envelope"}}
                }
            }
        },
        "/ratings/{gameId}/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["ratings"],
                "summary": "Stream rating updates",
                "parameters": [
                    {"type": "integer", "description": "Game ID", "name": "gameId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "rating.updated events", "schema": {"$ref": "#/definitions/hub.RatingPayload"}}
                }
            }
        }
    },
    "definitions": {
        "apperr.Envelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "BAD_REQUEST"},
                "details": {},
                "error": {"type": "string", "example": "Bad Request"},
                "message": {"type": "string", "example": "rating must be an integer between 1 and 5"},
                "timestamp": {"type": "string", "example": "2025-01-01T00:00:00Z"}
            }
        },
        "handler.CategoryResponse": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "id": {"type": "integer", "example": 3},
                "name": {"type": "string", "example": "Puzzle"},
                "slug": {"type": "string", "example": "puzzle"}
            }
        },
        "handler.GameResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"$ref": "#/definitions/handler.CategoryResponse"}},
                "createdAt": {"type": "string"},
                "description": {"type": "string"},
                "externalPlayerId": {"type": "string"},
                "id": {"type": "integer", "example": 1},
                "slug": {"type": "string", "example": "super-runner"},
                "thumbnail": {"type": "string"},
                "title": {"type": "string", "example": "Super Runner"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.PaginationMeta": {
            "type": "object",
            "properties": {
                "hasMore": {"type": "boolean", "example": true},
                "limit": {"type": "integer", "example": 12},
                "page": {"type": "integer", "example": 1},
                "total": {"type": "integer", "example": 42}
            }
        },
        "handler.GameListResponse": {
            "type": "object",
            "properties": {
                "games": {"type": "array", "items": {"$ref": "#/definitions/handler.GameResponse"}},
                "pagination": {"$ref": "#/definitions/handler.PaginationMeta"}
            }
        },
        "handler.GamesResponse": {
            "type": "object",
            "properties": {
                "games": {"type": "array", "items": {"$ref": "#/definitions/handler.GameResponse"}}
            }
        },
        "handler.CategoriesResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"$ref": "#/definitions/handler.CategoryResponse"}}
            }
        },
        "handler.CategoryGamesResponse": {
            "type": "object",
            "properties": {
                "category": {"$ref": "#/definitions/handler.CategoryResponse"},
                "games": {"type": "array", "items": {"$ref": "#/definitions/handler.GameResponse"}},
                "pagination": {"$ref": "#/definitions/handler.PaginationMeta"}
            }
        },
        "handler.RatingInput": {
            "type": "object",
            "properties": {
                "fingerprint": {"type": "string", "example": "c1a9f0e2"},
                "rating": {"type": "integer", "example": 4}
            }
        },
        "handler.RatingResponse": {
            "type": "object",
            "properties": {
                "averageRating": {"type": "number", "example": 4.3},
                "gameId": {"type": "integer", "example": 1},
                "totalRatings": {"type": "integer", "example": 12},
                "userRating": {"type": "integer", "example": 4}
            }
        },
        "handler.SubmitRatingResponse": {
            "type": "object",
            "properties": {
                "averageRating": {"type": "number", "example": 4.3},
                "gameId": {"type": "integer", "example": 1},
                "success": {"type": "boolean", "example": true},
                "totalRatings": {"type": "integer", "example": 12},
                "userRating": {"type": "integer", "example": 4}
            }
        },
        "hub.RatingPayload": {
            "type": "object",
            "properties": {
                "averageRating": {"type": "number"},
                "gameId": {"type": "integer"},
                "totalRatings": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Gamer Boy API",
	Description:      "Catalog, search and rating API for the gamer-boy HTML5 game portal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
