// Package rpc exposes the codec as a connect service. Messages are the
// protobuf StringValue well-known type, so the service speaks the connect,
// gRPC and gRPC-Web protocols without generated stubs.
package rpc

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/sambigeara/permcalc/pkg/convert"
	"github.com/sambigeara/permcalc/pkg/perm"
)

const (
	ServiceName = "permcalc.v1.PermissionService"

	EncodeProcedure = "/" + ServiceName + "/Encode"
	DecodeProcedure = "/" + ServiceName + "/Decode"
)

// NewHandler returns the mount path and handler for the service.
func NewHandler(conv convert.Converter, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(EncodeProcedure, connect.NewUnaryHandler(EncodeProcedure, unary(conv.Encode), opts...))
	mux.Handle(DecodeProcedure, connect.NewUnaryHandler(DecodeProcedure, unary(conv.Decode), opts...))
	return "/" + ServiceName + "/", mux
}

type convertFunc func(ctx context.Context, in string) (string, error)

func unary(fn convertFunc) func(context.Context, *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	return func(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
		out, err := fn(ctx, req.Msg.GetValue())
		if err != nil {
			return nil, toConnectError(err)
		}
		return connect.NewResponse(wrapperspb.String(out)), nil
	}
}

// toConnectError maps codec rejections to InvalidArgument and attaches the
// kind name as a StringValue detail.
func toConnectError(err error) error {
	kind, ok := perm.KindOf(err)
	if !ok {
		if errors.Is(err, context.Canceled) {
			return connect.NewError(connect.CodeCanceled, err)
		}
		return connect.NewError(connect.CodeInternal, err)
	}

	cerr := connect.NewError(connect.CodeInvalidArgument, err)
	if detail, detailErr := connect.NewErrorDetail(wrapperspb.String(kind.String())); detailErr == nil {
		cerr.AddDetail(detail)
	}
	return cerr
}
