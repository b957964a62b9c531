package decompose

import (
	"fmt"
	"strings"

	"github.com/vladprrs/ajtbd/pkg/jtbd"
	"github.com/vladprrs/ajtbd/pkg/lang"
)

const smallSystemPrompt = `You are a jobs-to-be-done analyst. You decompose a customer's core job into the smaller jobs the customer must get done around it. You always answer with JSON that matches the requested schema, nothing else.`

const microSystemPrompt = `You are a jobs-to-be-done analyst. You break one small job down into the micro steps a customer actually performs to get it done. You always answer with JSON that matches the requested schema, nothing else.`

const smallPromptTemplate = `Customer segment:
%s

Core job of this segment:
%s
%s
Propose between %d and %d small jobs the customer has to get done before, while and after doing the core job.

Rules:
- Each formulation is one sentence in the "%s" language, first person, starting with "%s".
- One outcome per job. Never join two actions with a conjunction.
- Assign each job a phase relative to the core job: "before", "during" or "after".
- Assign each job a cadence: "once" if it is done a single time, "repeat" if the customer returns to it.
- Order the jobs the way the customer would encounter them.`

const microPromptTemplate = `Customer segment:
%s

Core job of this segment:
%s

Small job to break down:
%s

Propose between %d and %d micro jobs: the concrete steps the customer performs to get this small job done.

Rules:
- Each formulation is one sentence in the "%s" language, first person, starting with "%s".
- One action per step. Never join two actions with a conjunction.
- Assign each step a cadence: "once" or "repeat".
- Order the steps the way the customer performs them.`

func smallJobsPrompt(graph *jtbd.Graph, profile *lang.Profile) string {
	bigJob := ""
	if graph.BigJobText != nil && *graph.BigJobText != "" {
		bigJob = fmt.Sprintf("\nThe core job serves this bigger goal:\n%s\n", *graph.BigJobText)
	}
	return fmt.Sprintf(smallPromptTemplate,
		graph.SegmentDescription,
		graph.CoreJobText,
		bigJob,
		jtbd.MinSmallJobs, jtbd.MaxSmallJobs,
		graph.Language,
		strings.TrimSpace(profile.CanonicalPrefix),
	)
}

func microJobsPrompt(graph *jtbd.Graph, small *jtbd.Job, profile *lang.Profile) string {
	return fmt.Sprintf(microPromptTemplate,
		graph.SegmentDescription,
		graph.CoreJobText,
		small.Formulation,
		jtbd.MinMicroJobs, jtbd.MaxMicroJobs,
		graph.Language,
		strings.TrimSpace(profile.CanonicalPrefix),
	)
}
