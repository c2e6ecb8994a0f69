package directory

import (
	"context"
	"sort"
	"testing"

	"go-hrm/internal/features/department"
	"go-hrm/internal/features/employee"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeEmployeeRepo struct {
	employees map[string]*employee.Employee
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, emp *employee.Employee) error { return nil }

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (*employee.Employee, error) {
	return f.employees[id], nil
}

func (f *fakeEmployeeRepo) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) FindByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) FindActiveByRoleKey(ctx context.Context, roleKey string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		if !emp.Active {
			continue
		}
		for _, k := range emp.RoleKeys {
			if k == roleKey {
				out = append(out, *emp)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (f *fakeEmployeeRepo) List(ctx context.Context, filter map[string]interface{}) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) Update(ctx context.Context, id string, emp *employee.Employee) error {
	return nil
}

func (f *fakeEmployeeRepo) Deactivate(ctx context.Context, id string) error { return nil }

type fakeDepartmentRepo struct {
	departments map[string]*department.Department
}

func (f *fakeDepartmentRepo) Create(ctx context.Context, d *department.Department) error { return nil }

func (f *fakeDepartmentRepo) GetByID(ctx context.Context, id string) (*department.Department, error) {
	return f.departments[id], nil
}

func (f *fakeDepartmentRepo) List(ctx context.Context) ([]department.Department, error) {
	return nil, nil
}

func (f *fakeDepartmentRepo) Update(ctx context.Context, id string, d *department.Department) error {
	return nil
}

func (f *fakeDepartmentRepo) Delete(ctx context.Context, id string) error { return nil }

func oid(i byte) primitive.ObjectID {
	var b [12]byte
	b[11] = i
	return primitive.ObjectID(b)
}

func buildOrg() (*fakeEmployeeRepo, *fakeDepartmentRepo) {
	managerID := oid(1)
	deptID := oid(10)
	headID := oid(2)

	employees := map[string]*employee.Employee{
		oid(1).Hex(): {ID: managerID, FirstName: "Mary", LastName: "Manager", Active: true},
		oid(2).Hex(): {ID: headID, FirstName: "Henry", LastName: "Head", Active: true},
		oid(3).Hex(): {ID: oid(3), FirstName: "Eve", LastName: "Employee", Active: true, ManagerID: &managerID, DepartmentID: &deptID},
		oid(4).Hex(): {ID: oid(4), FirstName: "Oscar", LastName: "Orphan", Active: true},
		oid(5).Hex(): {ID: oid(5), FirstName: "Alice", LastName: "Admin", Active: true, RoleKeys: []string{"hr_admin"}},
		oid(6).Hex(): {ID: oid(6), FirstName: "Bob", LastName: "Admin", Active: true, RoleKeys: []string{"hr_admin"}},
		oid(7).Hex(): {ID: oid(7), FirstName: "Gone", LastName: "Guy", Active: false},
	}
	departments := map[string]*department.Department{
		deptID.Hex(): {ID: deptID, Name: "Engineering", HeadID: &headID},
	}
	return &fakeEmployeeRepo{employees: employees}, &fakeDepartmentRepo{departments: departments}
}

func TestResolveApprover(t *testing.T) {
	empRepo, deptRepo := buildOrg()
	service := NewDirectoryService(empRepo, deptRepo)
	ctx := context.Background()

	tests := []struct {
		name    string
		subject string
		spec    ApproverSpec
		wantID  string // "" means unresolved
	}{
		{
			name:    "direct manager",
			subject: oid(3).Hex(),
			spec:    DirectManager(),
			wantID:  oid(1).Hex(),
		},
		{
			name:    "no manager resolves to none",
			subject: oid(4).Hex(),
			spec:    DirectManager(),
			wantID:  "",
		},
		{
			name:    "department head",
			subject: oid(3).Hex(),
			spec:    DepartmentHead(),
			wantID:  oid(2).Hex(),
		},
		{
			name:    "no department resolves to none",
			subject: oid(4).Hex(),
			spec:    DepartmentHead(),
			wantID:  "",
		},
		{
			name:    "hr admin picks lowest id among holders",
			subject: oid(3).Hex(),
			spec:    HRAdmin(),
			wantID:  oid(5).Hex(),
		},
		{
			name:    "specific role with no holders resolves to none",
			subject: oid(3).Hex(),
			spec:    SpecificRole("payroll_lead"),
			wantID:  "",
		},
		{
			name:    "specific employee verbatim",
			subject: oid(3).Hex(),
			spec:    SpecificEmployee(oid(2).Hex()),
			wantID:  oid(2).Hex(),
		},
		{
			name:    "inactive specific employee resolves to none",
			subject: oid(3).Hex(),
			spec:    SpecificEmployee(oid(7).Hex()),
			wantID:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ResolveApprover(ctx, tt.subject, tt.spec)
			if err != nil {
				t.Fatalf("ResolveApprover() error = %v", err)
			}
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("expected unresolved, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected approver %s, got none", tt.wantID)
			}
			if got.EmployeeID != tt.wantID {
				t.Errorf("approver = %s, want %s", got.EmployeeID, tt.wantID)
			}
		})
	}
}

func TestResolveApproverDeterministic(t *testing.T) {
	empRepo, deptRepo := buildOrg()
	service := NewDirectoryService(empRepo, deptRepo)
	ctx := context.Background()

	first, err := service.ResolveApprover(ctx, oid(3).Hex(), HRAdmin())
	if err != nil || first == nil {
		t.Fatalf("first resolution failed: %v %v", first, err)
	}
	for i := 0; i < 10; i++ {
		got, err := service.ResolveApprover(ctx, oid(3).Hex(), HRAdmin())
		if err != nil || got == nil || got.EmployeeID != first.EmployeeID {
			t.Fatalf("resolution %d not deterministic: got %v, want %s", i, got, first.EmployeeID)
		}
	}
}

func TestApproverSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    ApproverSpec
		wantErr bool
	}{
		{"direct manager ok", DirectManager(), false},
		{"specific role ok", SpecificRole("payroll_lead"), false},
		{"specific employee ok", SpecificEmployee("abc"), false},
		{"specific role missing ref", ApproverSpec{Type: ApproverSpecificRole}, true},
		{"specific employee missing ref", ApproverSpec{Type: ApproverSpecificEmployee}, true},
		{"manager with stray ref", ApproverSpec{Type: ApproverDirectManager, RoleKey: "x"}, true},
		{"specific employee with stray role", ApproverSpec{Type: ApproverSpecificEmployee, EmployeeID: "a", RoleKey: "x"}, true},
		{"unknown type", ApproverSpec{Type: "CHAIRMAN"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
