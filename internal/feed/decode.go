package feed

import (
	"errors"
	"sort"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Decode parses a GTFS-RT FeedMessage and extracts its trip updates.
// It is pure: the same bytes always produce the same Snapshot.
func Decode(b []byte) (*Snapshot, error) {
	if len(b) == 0 {
		return nil, &DecodeError{Err: errors.New("empty buffer")}
	}

	msg := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(b, msg); err != nil {
		return nil, &DecodeError{Err: err}
	}

	header := msg.GetHeader()
	if header.GetGtfsRealtimeVersion() == "" {
		return nil, &DecodeError{Err: errors.New("missing gtfs_realtime_version in header")}
	}

	snap := &Snapshot{Version: header.GetGtfsRealtimeVersion()}
	if ts := header.GetTimestamp(); ts > 0 {
		snap.Timestamp = time.Unix(int64(ts), 0).UTC()
	}

	for _, entity := range msg.GetEntity() {
		if entity.GetIsDeleted() {
			continue
		}
		tu := entity.GetTripUpdate()
		if tu == nil {
			continue
		}
		snap.Trips = append(snap.Trips, convertTrip(entity.GetId(), tu))
	}
	return snap, nil
}

func convertTrip(entityID string, tu *gtfs.TripUpdate) TripUpdate {
	trip := tu.GetTrip()
	out := TripUpdate{
		TripID:    trip.GetTripId(),
		RouteID:   trip.GetRouteId(),
		EntityID:  entityID,
		VehicleID: tu.GetVehicle().GetId(),
		Cancelled: trip.GetScheduleRelationship() == gtfs.TripDescriptor_CANCELED,
	}
	if trip != nil && trip.DirectionId != nil {
		dir := trip.GetDirectionId()
		out.DirectionID = &dir
	}

	tripDelay := tu.GetDelay()
	stus := tu.GetStopTimeUpdate()

	// If any update lacks stop_sequence, number them all by feed order.
	bySequence := true
	for _, stu := range stus {
		if stu.StopSequence == nil {
			bySequence = false
			break
		}
	}

	stops := make([]StopTimeUpdate, 0, len(stus))
	for i, stu := range stus {
		if stu.GetStopId() == "" {
			continue
		}
		s := StopTimeUpdate{
			StopID:       stu.GetStopId(),
			StopSequence: uint32(i + 1),
			Skipped:      stu.GetScheduleRelationship() == gtfs.TripUpdate_StopTimeUpdate_SKIPPED,
			DelaySeconds: tripDelay,
		}
		if bySequence {
			s.StopSequence = stu.GetStopSequence()
		}
		if ev := stu.GetArrival(); ev != nil {
			if ev.Time != nil {
				t := ev.GetTime()
				s.Arrival = &t
			}
		}
		if ev := stu.GetDeparture(); ev != nil {
			if ev.Time != nil {
				t := ev.GetTime()
				s.Departure = &t
			}
		}
		switch {
		case stu.GetArrival() != nil && stu.GetArrival().Delay != nil:
			s.DelaySeconds = stu.GetArrival().GetDelay()
		case stu.GetDeparture() != nil && stu.GetDeparture().Delay != nil:
			s.DelaySeconds = stu.GetDeparture().GetDelay()
		}
		stops = append(stops, s)
	}

	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].StopSequence < stops[j].StopSequence
	})

	// Drop repeated sequence numbers so the sequence strictly increases.
	out.Stops = stops[:0]
	for _, s := range stops {
		if n := len(out.Stops); n > 0 && out.Stops[n-1].StopSequence == s.StopSequence {
			continue
		}
		out.Stops = append(out.Stops, s)
	}
	if len(out.Stops) == 0 {
		out.Stops = nil
	}
	return out
}
