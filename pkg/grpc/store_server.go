package grpc

import (
	"context"

	"github.com/example/clickmenu/pkg/models"
	"github.com/example/clickmenu/pkg/service"
	"go.uber.org/zap"
)

type StoreServer struct {
	stores service.StoreService
	logger *zap.Logger
}

func NewStoreServer(stores service.StoreService, logger *zap.Logger) *StoreServer {
	return &StoreServer{stores: stores, logger: logger.Named("store-rpc")}
}

func (s *StoreServer) ListStores(ctx context.Context, req *ListStoresRequest) (*StoreList, error) {
	page, err := s.stores.ListStores(ctx, scopeFromContext(ctx), models.StoreFilter{
		Query:  req.Query,
		Status: models.StoreStatus(req.Status),
		Page:   models.Page{Limit: req.Limit, Offset: req.Offset},
	})
	if err != nil {
		return nil, toStatus(s.logger, "ListStores", err)
	}
	return &StoreList{Stores: page.Items, Total: page.Total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (s *StoreServer) GetStore(ctx context.Context, req *GetStoreRequest) (*models.Store, error) {
	store, err := s.stores.GetStore(ctx, scopeFromContext(ctx), req.StoreID)
	if err != nil {
		return nil, toStatus(s.logger, "GetStore", err)
	}
	return store, nil
}

func (s *StoreServer) BulkUpdateStores(ctx context.Context, req *BulkUpdateStoresRequest) (*BulkResponse, error) {
	res, err := s.stores.BulkUpdateStatus(ctx, scopeFromContext(ctx), req.StoreIDs, service.BulkAction(req.Action))
	if err != nil {
		return nil, toStatus(s.logger, "BulkUpdateStores", err)
	}
	return bulkResponse(res), nil
}

func (s *StoreServer) BulkResetPasscodes(ctx context.Context, req *BulkResetPasscodesRequest) (*BulkResponse, error) {
	res, err := s.stores.BulkResetPasscodes(ctx, scopeFromContext(ctx), req.StoreIDs)
	if err != nil {
		return nil, toStatus(s.logger, "BulkResetPasscodes", err)
	}
	return bulkResponse(res), nil
}

func bulkResponse(res *service.BulkResult) *BulkResponse {
	out := &BulkResponse{Succeeded: res.Succeeded, Failed: make([]BulkFailure, 0, len(res.Failed))}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, BulkFailure{StoreID: f.StoreID, Error: f.Error})
	}
	if len(res.Passcodes) > 0 {
		out.Passcodes = make(map[string]string, len(res.Passcodes))
		for _, p := range res.Passcodes {
			out.Passcodes[p.Store.StoreID] = p.Passcode
		}
	}
	return out
}
