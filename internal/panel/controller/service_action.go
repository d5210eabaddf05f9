// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package controller

import (
	"context"
	"log/slog"

	"github.com/taibuivan/panelkit/internal/panel/export"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/validate"
	"github.com/taibuivan/panelkit/internal/store"
)

// # Actions

/*
RunAction runs an action against the records selected in the body.

The body carries "resources" (the selected keys) and "fields" (the action's
own form values). The caller needs "runAction" on every selected record, and
the action runs in a single transaction. The resource cache is cleared
afterwards since actions may write anything.
*/
func (service *Service) RunAction(req *request.Request, uriKey, actionKey string) (result resource.ActionResult, err error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return result, err
	}
	defer func() { service.observe(t.URIKey(), "action", err) }()

	action := t.FindAction(req, actionKey)
	if action == nil {
		return result, apperr.NotFound("Action")
	}

	selected := selection(req.InputMap())
	records, err := service.selectKeys(req, t, selected.Keys, store.ExcludeTrashed)
	if err != nil {
		return result, err
	}
	if err := service.authorizeEach(req, t, policy.RunAction, records); err != nil {
		return result, err
	}

	actionReq := request.New(req.Context(), req.User(), selected.Fields, req.Query())
	rules := make(map[string][]string)
	for _, f := range action.Fields(actionReq) {
		if r := f.CreationValidationRules(); len(r) > 0 {
			rules[f.Attribute()] = r
		}
	}
	if err := validate.Check(actionReq.InputMap(), rules); err != nil {
		return result, err
	}

	err = service.store.Transaction(req.Context(), func(ctx context.Context) error {
		var handleErr error
		result, handleErr = action.Handle(ctx, actionReq.WithContext(ctx), records)
		return handleErr
	})
	if err != nil {
		return resource.ActionResult{}, err
	}

	service.cache.ClearCache(req.Context(), t.URIKey())
	service.logger.InfoContext(req.Context(), "action_ran",
		slog.String("resource", t.URIKey()),
		slog.String("action", action.Key()),
		slog.Int("count", len(records)),
	)
	return result, nil
}

// # Export

/*
Export renders the filtered index of a resource as a downloadable document.

It honors the same "search", "filters" and "trashed" parameters as the
index. "format" picks the encoder (csv by default) and "limit" lowers the
row cap. Encoding failures are reported inside the result rather than as an
error.
*/
func (service *Service) Export(req *request.Request, uriKey string) (result export.Result, err error) {
	t, err := service.locate(uriKey)
	if err != nil {
		return result, err
	}
	defer func() { service.observe(t.URIKey(), "export", err) }()

	if err := service.authorize(req, t, policy.Export, nil); err != nil {
		return result, err
	}
	format, ok := export.ParseFormat(req.Param("format"))
	if !ok {
		return result, apperr.BadRequest("Unsupported export format: " + req.Param("format"))
	}

	q, _ := service.listing(req, t)
	return service.exports.Export(req.Context(), t, req, q, format, req.ParamInt("limit", 0)), nil
}
