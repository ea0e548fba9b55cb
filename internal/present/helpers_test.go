package present

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-pivot/internal/aggregate"
	"github.com/mvp-joe/project-pivot/internal/chain"
	"github.com/mvp-joe/project-pivot/internal/graph"
	"github.com/mvp-joe/project-pivot/internal/model"
)

// Staff (c1) working on projects (c2):
//
//	p1{dept:eng} -- t1{phase:build, budget:10}, t2{phase:run, budget:20}
//	p2{dept:ops} -- t2
//	p3{dept:eng} -- t3{phase:build, budget:5}
var (
	testCollections = []model.Collection{
		{ID: "c1", Name: "Staff", Color: "#336699"},
		{ID: "c2", Name: "Projects"},
	}
	testLinkTypes = []model.LinkType{
		{ID: "lt1", CollectionIDs: [2]string{"c1", "c2"}},
	}
	testDocuments = []model.Document{
		{ID: "p1", CollectionID: "c1", Data: map[string]any{"dept": "eng"}},
		{ID: "p2", CollectionID: "c1", Data: map[string]any{"dept": "ops"}},
		{ID: "p3", CollectionID: "c1", Data: map[string]any{"dept": "eng"}},
		{ID: "t1", CollectionID: "c2", Data: map[string]any{"phase": "build", "budget": 10.0}},
		{ID: "t2", CollectionID: "c2", Data: map[string]any{"phase": "run", "budget": 20.0}},
		{ID: "t3", CollectionID: "c2", Data: map[string]any{"phase": "build", "budget": 5.0}},
	}
	testLinks = []model.LinkInstance{
		{ID: "l1", LinkTypeID: "lt1", DocumentIDs: [2]string{"p1", "t1"}},
		{ID: "l2", LinkTypeID: "lt1", DocumentIDs: [2]string{"p1", "t2"}},
		{ID: "l3", LinkTypeID: "lt1", DocumentIDs: [2]string{"p2", "t2"}},
		{ID: "l4", LinkTypeID: "lt1", DocumentIDs: [2]string{"p3", "t3"}},
	}
	staffToProjects = model.QueryStem{CollectionID: "c1", LinkTypeIDs: []string{"lt1"}}
)

func attr(id string, index int) model.AggregationAttribute {
	return model.AggregationAttribute{AttributeID: id, ResourceIndex: index}
}

func attrs(a ...model.AggregationAttribute) []model.AggregationAttribute { return a }

func aggregateDocs(t *testing.T, stem model.QueryStem, docs []model.Document, rows, columns, values []model.AggregationAttribute) *aggregate.Result {
	t.Helper()
	c := chain.Resolve(stem, testCollections, testLinkTypes)
	g := graph.Build(c.CollectionIDs(), docs, c.LinkTypes(), testLinks)
	res, err := aggregate.New(c, g).Aggregate(rows, columns, values)
	require.NoError(t, err)
	return res
}

// budgetByDeptAndPhase groups staff by dept, then projects by phase, collecting budgets.
func budgetByDeptAndPhase(t *testing.T) *aggregate.Result {
	return aggregateDocs(t, staffToProjects, testDocuments,
		attrs(attr("dept", 0)), attrs(attr("phase", 2)), attrs(attr("budget", 2)))
}
