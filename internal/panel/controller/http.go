// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package controller

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	panelrequest "github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/middleware"
	requestutil "github.com/taibuivan/panelkit/internal/platform/request"
	"github.com/taibuivan/panelkit/internal/platform/respond"
	"github.com/taibuivan/panelkit/pkg/convert"
)

// # Handler Definitions

// Handler is the HTTP transport of the resource pipeline.
type Handler struct {
	service *Service
	prefix  string
}

// NewHandler builds the handler. prefix is the public mount path, used to
// build Location headers ("/api/v1/resources").
func NewHandler(service *Service, prefix string) *Handler {
	return &Handler{service: service, prefix: prefix}
}

// Routes returns the resource endpoints. Every route requires an
// authenticated caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listResources)

	router.Route("/{resource}", func(resourceRoute chi.Router) {
		// # Collection
		resourceRoute.Get("/", handler.index)
		resourceRoute.Post("/", handler.store)
		resourceRoute.Get("/create", handler.createSchema)
		resourceRoute.Get("/export", handler.export)
		resourceRoute.Post("/actions/{action}", handler.runAction)

		// # Bulk Trash
		resourceRoute.Post("/restore", handler.bulkRestore)
		resourceRoute.Delete("/force", handler.bulkForceDelete)

		// # Record
		resourceRoute.Route("/{id}", func(recordRoute chi.Router) {
			recordRoute.Get("/", handler.show)
			recordRoute.Put("/", handler.update)
			recordRoute.Patch("/", handler.update)
			recordRoute.Delete("/", handler.destroy)
			recordRoute.Get("/edit", handler.edit)
			recordRoute.Post("/restore", handler.restore)
			recordRoute.Delete("/force", handler.forceDelete)

			// # History
			recordRoute.Get("/versions", handler.listVersions)
			recordRoute.Get("/versions/compare", handler.compareVersions)
			recordRoute.Get("/versions/{version}", handler.getVersion)
			recordRoute.Post("/versions/{version}/restore", handler.restoreVersion)
		})
	})

	return router
}

// panelRequest decodes the JSON body of write requests.
func panelRequest(writer http.ResponseWriter, request *http.Request) (*panelrequest.Request, error) {
	if request.Method == http.MethodGet || request.Method == http.MethodHead {
		return panelrequest.FromHTTP(request, nil), nil
	}
	input, err := requestutil.DecodeMap(writer, request)
	if err != nil {
		return nil, err
	}
	return panelrequest.FromHTTP(request, input), nil
}

func versionParam(request *http.Request) (int, error) {
	number, err := strconv.Atoi(requestutil.Param(request, "version"))
	if err != nil || number < 1 {
		return 0, apperr.BadRequest("Invalid version number")
	}
	return number, nil
}

// # Navigation & Listing

func (handler *Handler) listResources(writer http.ResponseWriter, request *http.Request) {
	req, _ := panelRequest(writer, request)
	respond.OK(writer, handler.service.Resources(req))
}

func (handler *Handler) index(writer http.ResponseWriter, request *http.Request) {
	req, _ := panelRequest(writer, request)

	payload, meta, err := handler.service.Index(req, requestutil.Param(request, "resource"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, payload, meta)
}

func (handler *Handler) show(writer http.ResponseWriter, request *http.Request) {
	req, _ := panelRequest(writer, request)

	payload, err := handler.service.Show(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, payload)
}

func (handler *Handler) createSchema(writer http.ResponseWriter, request *http.Request) {
	req, _ := panelRequest(writer, request)

	payload, err := handler.service.CreateSchema(req, requestutil.Param(request, "resource"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, payload)
}

func (handler *Handler) edit(writer http.ResponseWriter, request *http.Request) {
	req, _ := panelRequest(writer, request)

	payload, err := handler.service.Edit(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, payload)
}

// # Writes

func (handler *Handler) store(writer http.ResponseWriter, request *http.Request) {
	req, err := panelRequest(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	uriKey := requestutil.Param(request, "resource")
	payload, err := handler.service.Store(req, uriKey)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Location", handler.prefix+"/"+uriKey+"/"+url.PathEscape(convert.ToString(payload.ID)))
	respond.Created(writer, payload)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	req, err := panelRequest(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := handler.service.Update(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, payload)
}

func (handler *Handler) destroy(writer http.ResponseWriter, request *http.Request) {
	req, err := panelRequest(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Destroy(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Trash

func (handler *Handler) restore(writer http.ResponseWriter, request *http.Request) {
	req, err := panelRequest(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := handler.service.Restore(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, payload)
}

func (handler *Handler) forceDelete(writer http.ResponseWriter, request *http.Request) {
	req, err := panelRequest(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ForceDelete(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) bulkRestore(writer http.ResponseWriter, request *http.Request) {
	req, err := panelRequest(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := handler.service.BulkRestore(req, requestutil.Param(request, "resource"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, payload)
}

func (handler *Handler) bulkForceDelete(writer http.ResponseWriter, request *http.Request) {
	req, err := panelRequest(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := handler.service.BulkForceDelete(req, requestutil.Param(request, "resource"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, payload)
}

// # Actions & Export

func (handler *Handler) runAction(writer http.ResponseWriter, request *http.Request) {
	req, err := panelRequest(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.RunAction(req, requestutil.Param(request, "resource"), requestutil.Param(request, "action"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) export(writer http.ResponseWriter, request *http.Request) {
	req, _ := panelRequest(writer, request)

	result, err := handler.service.Export(req, requestutil.Param(request, "resource"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !result.Success {
		respond.JSON(writer, http.StatusUnprocessableEntity, respond.SuccessEnvelope{Data: result})
		return
	}
	respond.File(writer, result.Filename, result.ContentType, result.Content)
}

// # History

func (handler *Handler) listVersions(writer http.ResponseWriter, request *http.Request) {
	req, _ := panelRequest(writer, request)

	versions, err := handler.service.Versions(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, versions)
}

func (handler *Handler) getVersion(writer http.ResponseWriter, request *http.Request) {
	number, err := versionParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	req, _ := panelRequest(writer, request)

	version, err := handler.service.Version(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id"), number)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, version)
}

func (handler *Handler) compareVersions(writer http.ResponseWriter, request *http.Request) {
	req, _ := panelRequest(writer, request)

	from, to := req.ParamInt("from", 0), req.ParamInt("to", 0)
	if from < 1 || to < 1 {
		respond.Error(writer, request, apperr.BadRequest("Both from and to versions are required"))
		return
	}

	comparison, err := handler.service.CompareVersions(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id"), from, to)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comparison)
}

func (handler *Handler) restoreVersion(writer http.ResponseWriter, request *http.Request) {
	number, err := versionParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	req, err := panelRequest(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := handler.service.RestoreVersion(req, requestutil.Param(request, "resource"), requestutil.Param(request, "id"), number)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, payload)
}
