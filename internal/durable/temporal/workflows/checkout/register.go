package checkout

import (
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/workflow"

	orderingactivities "github.com/Apurer/singgah-pos/internal/durable/temporal/activities/ordering"
)

// Registrar is the part of a Temporal worker the checkout flow registers on.
type Registrar interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

// Register binds the checkout workflow and the activities it schedules under their public names.
func Register(r Registrar, activities *orderingactivities.Activities) {
	r.RegisterWorkflowWithOptions(CheckoutWorkflow, workflow.RegisterOptions{Name: CheckoutWorkflowName})
	r.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderingactivities.PlaceOrderActivityName})
}
