package client

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

// decode checks that every required field is present and non-null in the
// raw body, then unmarshals it into v.
func decode(resp *Response, op string, v any, required ...string) error {
	if len(resp.Body) == 0 {
		return application(op, "BizMate sent an empty response.", nil)
	}
	for _, field := range required {
		node, err := sonic.Get(resp.Body, field)
		if err != nil || !node.Exists() || node.TypeSafe() == ast.V_NULL {
			return application(op, "BizMate sent an incomplete response.",
				fmt.Errorf("missing field %q", field))
		}
	}
	if err := sonic.Unmarshal(resp.Body, v); err != nil {
		return application(op, "BizMate sent a response we could not use.", err)
	}
	return nil
}

// decodeList unmarshals a JSON array body into v.
func decodeList(resp *Response, op string, v any) error {
	root, err := sonic.Get(resp.Body)
	if err != nil || root.TypeSafe() != ast.V_ARRAY {
		return application(op, "BizMate sent a response we could not use.",
			fmt.Errorf("expected a JSON array"))
	}
	if err := sonic.Unmarshal(resp.Body, v); err != nil {
		return application(op, "BizMate sent a response we could not use.", err)
	}
	return nil
}
