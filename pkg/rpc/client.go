package rpc

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/sambigeara/permcalc/pkg/perm"
)

// Client calls a remote PermissionService. It satisfies convert.Converter.
type Client struct {
	encode *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue]
	decode *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue]
}

func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		encode: connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](httpClient, baseURL+EncodeProcedure, opts...),
		decode: connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](httpClient, baseURL+DecodeProcedure, opts...),
	}
}

func (c *Client) Encode(ctx context.Context, octal string) (string, error) {
	return call(ctx, c.encode, octal)
}

func (c *Client) Decode(ctx context.Context, symbolic string) (string, error) {
	return call(ctx, c.decode, symbolic)
}

func call(ctx context.Context, client *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue], in string) (string, error) {
	resp, err := client.CallUnary(ctx, connect.NewRequest(wrapperspb.String(in)))
	if err != nil {
		return "", fromConnectError(err)
	}
	return resp.Msg.GetValue(), nil
}

// RemoteError is a codec rejection reported by the server. It matches the
// local sentinel for its kind under errors.Is.
type RemoteError struct {
	Kind perm.Kind
	err  *connect.Error
}

func (e *RemoteError) Error() string { return e.err.Message() }

func (e *RemoteError) Unwrap() []error { return []error{e.Kind.Err(), e.err} }

func fromConnectError(err error) error {
	var cerr *connect.Error
	if !errors.As(err, &cerr) || cerr.Code() != connect.CodeInvalidArgument {
		return err
	}
	for _, d := range cerr.Details() {
		msg, valueErr := d.Value()
		if valueErr != nil {
			continue
		}
		sv, ok := msg.(*wrapperspb.StringValue)
		if !ok {
			continue
		}
		if kind, ok := perm.ParseKind(sv.GetValue()); ok {
			return &RemoteError{Kind: kind, err: cerr}
		}
	}
	return err
}
