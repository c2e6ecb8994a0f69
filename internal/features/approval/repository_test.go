package approval

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

// walkExpr visits every string (field paths, variable refs) and every
// operator key in an aggregation expression tree.
func walkExpr(v interface{}, visit func(s string), visitOp func(op string, operand interface{})) {
	switch node := v.(type) {
	case bson.M:
		for key, val := range node {
			visitOp(key, val)
			walkExpr(val, visit, visitOp)
		}
	case bson.A:
		for _, item := range node {
			walkExpr(item, visit, visitOp)
		}
	case string:
		visit(node)
	}
}

// A path like "$steps.approver.employee_id" collects the subfield only
// from array elements that carry it; omitempty pointers on pre-skipped
// and no-timeout steps shorten the collected array and misalign it with
// current_step. The filters must therefore pick the element off "$steps"
// first and read subfields from the bound element.
func TestPendingFiltersSelectStepElementBeforeSubfield(t *testing.T) {
	filters := map[string]bson.M{
		"pending by approver":  pendingByApproverFilter("emp-1"),
		"pending with timeout": pendingWithTimeoutFilter(),
	}

	for name, filter := range filters {
		elemAtOnSteps := false
		subfieldOffElement := false

		walkExpr(filter,
			func(s string) {
				if strings.HasPrefix(s, "$steps.") {
					t.Errorf("%s: collapsed array path %q skips steps missing the subfield", name, s)
				}
				if strings.HasPrefix(s, "$$cur.") {
					subfieldOffElement = true
				}
			},
			func(op string, operand interface{}) {
				if op != "$arrayElemAt" {
					return
				}
				args, ok := operand.(bson.A)
				if !ok || len(args) != 2 {
					t.Fatalf("%s: $arrayElemAt wants two operands, got %v", name, operand)
				}
				if args[0] == "$steps" {
					elemAtOnSteps = true
				} else {
					t.Errorf("%s: $arrayElemAt indexes %v, want the whole $steps array", name, args[0])
				}
			},
		)

		if !elemAtOnSteps {
			t.Errorf("%s: filter never selects the step element at current_step", name)
		}
		if !subfieldOffElement {
			t.Errorf("%s: filter never reads a subfield off the selected element", name)
		}
	}
}

func TestPendingByApproverFilterCarriesApproverID(t *testing.T) {
	filter := pendingByApproverFilter("emp-42")

	found := false
	walkExpr(filter,
		func(s string) {
			if s == "emp-42" {
				found = true
			}
		},
		func(string, interface{}) {},
	)
	if !found {
		t.Fatal("filter does not compare against the requested approver id")
	}
}
