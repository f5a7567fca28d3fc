package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Defense Portal API",
        "description": "Thesis defense registration, scheduling and revision clearance portal",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Staff authentication"},
        {"name": "Requirements", "description": "Requirement catalog management"},
        {"name": "Submissions", "description": "Registration workflow"},
        {"name": "Schedules", "description": "Defense exam scheduling"},
        {"name": "Revisions", "description": "Post-exam revision clearance"},
        {"name": "Students", "description": "Student directory"},
        {"name": "Process", "description": "Process data reset and undo"},
        {"name": "Dashboard", "description": "Workflow statistics"},
        {"name": "Reports", "description": "CSV and PDF exports"},
        {"name": "Uploads", "description": "Document storage with signed links"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Staff login",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/requirements": {
            "get": {
                "tags": ["Requirements"],
                "summary": "List requirement catalog for a phase and stage",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Requirements"],
                "summary": "Create or replace a catalog entry",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/submissions": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Register a defense submission",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate registration"}
                }
            },
            "get": {
                "tags": ["Submissions"],
                "summary": "List submissions",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/submissions/lookup": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Look up a submission by NPM and phase",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/submissions/{id}/validations/{reqId}": {
            "put": {
                "tags": ["Submissions"],
                "summary": "Record a file validation decision",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Submissions"],
                "summary": "Clear a file validation decision",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Propose a defense schedule",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Room or committee conflict"},
                    "412": {"description": "Submission not validated"}
                }
            },
            "get": {
                "tags": ["Schedules"],
                "summary": "List schedules",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/upcoming": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List schedules within the coming days",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/revisions": {
            "get": {
                "tags": ["Revisions"],
                "summary": "List submissions awaiting revision clearance",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/revisions/{id}/finalize": {
            "post": {
                "tags": ["Revisions"],
                "summary": "Finalize revision clearance",
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Clearance gates not met"}
                }
            }
        },
        "/students/import": {
            "post": {
                "tags": ["Students"],
                "summary": "Import students from CSV",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/process/reset": {
            "post": {
                "tags": ["Process"],
                "summary": "Reset all process data",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/process/undo-reset": {
            "post": {
                "tags": ["Process"],
                "summary": "Undo the last process reset",
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Nothing to undo"}
                }
            }
        },
        "/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Workflow statistics",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
