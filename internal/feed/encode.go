package feed

import (
	"fmt"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Encode builds a GTFS-RT FeedMessage from a Snapshot. Decode(Encode(s))
// yields the same trips and stops, which makes it the fixture builder for
// tests and the CLI.
func Encode(s Snapshot) ([]byte, error) {
	version := s.Version
	if version == "" {
		version = "2.0"
	}
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String(version),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
		},
	}
	if !s.Timestamp.IsZero() {
		msg.Header.Timestamp = proto.Uint64(uint64(s.Timestamp.Unix()))
	}

	for i, t := range s.Trips {
		id := t.EntityID
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		trip := &gtfs.TripDescriptor{}
		if t.TripID != "" {
			trip.TripId = proto.String(t.TripID)
		}
		if t.RouteID != "" {
			trip.RouteId = proto.String(t.RouteID)
		}
		if t.DirectionID != nil {
			trip.DirectionId = proto.Uint32(*t.DirectionID)
		}
		if t.Cancelled {
			trip.ScheduleRelationship = gtfs.TripDescriptor_CANCELED.Enum()
		}

		tu := &gtfs.TripUpdate{Trip: trip}
		if t.VehicleID != "" {
			tu.Vehicle = &gtfs.VehicleDescriptor{Id: proto.String(t.VehicleID)}
		}
		for _, st := range t.Stops {
			stu := &gtfs.TripUpdate_StopTimeUpdate{
				StopId:       proto.String(st.StopID),
				StopSequence: proto.Uint32(st.StopSequence),
			}
			if st.Arrival != nil {
				stu.Arrival = &gtfs.TripUpdate_StopTimeEvent{
					Time:  proto.Int64(*st.Arrival),
					Delay: proto.Int32(st.DelaySeconds),
				}
			}
			if st.Departure != nil {
				stu.Departure = &gtfs.TripUpdate_StopTimeEvent{
					Time:  proto.Int64(*st.Departure),
					Delay: proto.Int32(st.DelaySeconds),
				}
			}
			if st.Skipped {
				stu.ScheduleRelationship = gtfs.TripUpdate_StopTimeUpdate_SKIPPED.Enum()
			}
			tu.StopTimeUpdate = append(tu.StopTimeUpdate, stu)
		}

		msg.Entity = append(msg.Entity, &gtfs.FeedEntity{
			Id:         proto.String(id),
			TripUpdate: tu,
		})
	}

	return proto.Marshal(msg)
}

// DumpJSON renders a raw feed as indented protojson, for inspection.
func DumpJSON(b []byte) ([]byte, error) {
	msg := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(b, msg); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
}
