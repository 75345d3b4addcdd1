package broker

// Topic names shared by the depot runtime, scheduler and demand generator.
const (
	// TopicReservations carries new and updated reservations from the
	// demand generator. Records on this topic are authoritative per id.
	TopicReservations = "reservations"
	// TopicAssignments carries reservation-to-vehicle assignments from the
	// scheduler to the depot runtime.
	TopicAssignments = "reservation_assignments"
	// TopicMoveCharge carries move/charge instructions, each a vehicle
	// value with its target station populated.
	TopicMoveCharge = "move_charge"
	// TopicScans carries arrival scan events published by the runtime when
	// a driving vehicle returns to the depot.
	TopicScans = "scan_events"
	// TopicVehicles and TopicStations carry the refreshed physical
	// snapshot published by the runtime at the end of each interval.
	TopicVehicles = "vehicles"
	TopicStations = "stations"
	// TopicVehiclesDemand mirrors the vehicle snapshot for the demand
	// generator, which consumes it independently of the scheduler.
	TopicVehiclesDemand = "vehicles_demand"
)
