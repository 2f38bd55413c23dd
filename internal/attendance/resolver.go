package attendance

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/BrandonDHaskell/timekeep/internal/logging"
	"github.com/BrandonDHaskell/timekeep/internal/metrics"
)

// SchemaResolver resolves the vendor schema once per process. Failures
// are returned to the caller and retried on the next call.
type SchemaResolver struct {
	src MetadataSource

	cached atomic.Pointer[resolved]
	mu     sync.Mutex
}

type resolved struct {
	mapping SchemaMapping
	plan    VariantPlan
}

func NewSchemaResolver(src MetadataSource) *SchemaResolver {
	return &SchemaResolver{src: src}
}

// Get returns the cached mapping, resolving it on first use.
func (r *SchemaResolver) Get(ctx context.Context) (SchemaMapping, error) {
	res, err := r.get(ctx)
	if err != nil {
		return SchemaMapping{}, err
	}
	return res.mapping, nil
}

// Plan returns the variant plan of the cached mapping.
func (r *SchemaResolver) Plan(ctx context.Context) (VariantPlan, error) {
	res, err := r.get(ctx)
	if err != nil {
		return VariantPlan{}, err
	}
	return res.plan, nil
}

// Resolved reports whether a mapping is cached, without resolving.
func (r *SchemaResolver) Resolved() bool { return r.cached.Load() != nil }

func (r *SchemaResolver) get(ctx context.Context) (*resolved, error) {
	if res := r.cached.Load(); res != nil {
		return res, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.cached.Load(); res != nil {
		return res, nil
	}

	md, err := LoadMetadata(ctx, r.src)
	if err == nil {
		var m SchemaMapping
		m, err = ResolveSchema(md)
		if err == nil {
			res := &resolved{mapping: m, plan: DetectVariant(m)}
			r.cached.Store(res)
			metrics.RecordSchemaResolution(nil)
			logResolvedSchema(res)
			return res, nil
		}
	}
	metrics.RecordSchemaResolution(err)
	return nil, err
}

func logResolvedSchema(res *resolved) {
	ev := logging.Info().
		Str("component", "schema").
		Str("employee_table", res.mapping.EmployeeTable).
		Str("name_col", res.mapping.NameCol).
		Str("employee_id_col", res.mapping.EmployeeIDCol).
		Str("employee_id_source", res.mapping.EmployeeIDSource).
		Str("department_col", res.mapping.DepartmentCol).
		Str("card_col", res.mapping.CardCol).
		Str("event_time_col", res.mapping.EventTimeCol).
		Str("variant", string(res.plan.Variant))
	if dl := res.mapping.DepartmentLookup; dl != nil {
		ev = ev.Str("department_table", dl.Table).Str("department_name_col", dl.NameCol)
	}
	ev.Msg("vendor schema resolved")
}
