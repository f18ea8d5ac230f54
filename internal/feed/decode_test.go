package feed

import (
	"errors"
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func i64(v int64) *int64 { return &v }

func fixtureSnapshot(now time.Time) Snapshot {
	dir := uint32(1)
	return Snapshot{
		Version:   "2.0",
		Timestamp: now.UTC().Truncate(time.Second),
		Trips: []TripUpdate{
			{
				TripID:      "2477937",
				RouteID:     "2",
				EntityID:    "1571",
				DirectionID: &dir,
				Stops: []StopTimeUpdate{
					{StopID: "56", StopSequence: 3, Arrival: i64(now.Add(8 * time.Minute).Unix()), Departure: i64(now.Add(9 * time.Minute).Unix())},
					{StopID: "4", StopSequence: 7, Arrival: i64(now.Add(25 * time.Minute).Unix())},
					{StopID: "1", StopSequence: 9, Arrival: i64(now.Add(40 * time.Minute).Unix()), DelaySeconds: 120},
				},
			},
			{
				TripID:    "bus-7-1",
				RouteID:   "7",
				EntityID:  "bus-7-1",
				VehicleID: "4410",
				Cancelled: true,
				Stops: []StopTimeUpdate{
					{StopID: "1001", StopSequence: 1, Arrival: i64(now.Add(3 * time.Minute).Unix()), Skipped: true},
				},
			},
		},
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	want := fixtureSnapshot(now)

	b, err := Encode(want)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, want.Version, got.Version)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, want.Trips, got.Trips)
}

func TestDecode_Deterministic(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	b, err := Encode(fixtureSnapshot(now))
	require.NoError(t, err)

	first, err := Decode(b)
	require.NoError(t, err)
	second, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecode_InvalidBuffers(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
		{"truncated length", []byte{0x0a, 0x10, 0x0a}},
		{"ascii text", []byte("On-Time 1571 Late")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Decode(tt.data)
			require.Error(t, err)
			assert.Nil(t, snap)
			var de *DecodeError
			assert.True(t, errors.As(err, &de), "want *DecodeError, got %T", err)
			assert.Equal(t, FailureDecode, Classify(err))
		})
	}
}

func TestDecode_MissingVersion(t *testing.T) {
	msg := &gtfs.FeedMessage{Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("")}}
	b, err := proto.Marshal(msg)
	require.NoError(t, err)

	_, err = Decode(b)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
}

func TestDecode_SortsAndDedupesSequence(t *testing.T) {
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfs.FeedEntity{{
			Id: proto.String("e1"),
			TripUpdate: &gtfs.TripUpdate{
				Trip: &gtfs.TripDescriptor{TripId: proto.String("t1")},
				StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
					{StopId: proto.String("C"), StopSequence: proto.Uint32(5)},
					{StopId: proto.String("A"), StopSequence: proto.Uint32(1)},
					{StopId: proto.String("B"), StopSequence: proto.Uint32(3)},
					{StopId: proto.String("B2"), StopSequence: proto.Uint32(3)},
				},
			},
		}},
	}
	b, err := proto.Marshal(msg)
	require.NoError(t, err)

	snap, err := Decode(b)
	require.NoError(t, err)
	require.Len(t, snap.Trips, 1)

	var ids []string
	var prev uint32
	for i, s := range snap.Trips[0].Stops {
		ids = append(ids, s.StopID)
		if i > 0 {
			assert.Greater(t, s.StopSequence, prev)
		}
		prev = s.StopSequence
	}
	assert.Equal(t, []string{"A", "B", "C"}, ids)
}

func TestDecode_MissingSequenceUsesFeedOrder(t *testing.T) {
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfs.FeedEntity{{
			Id: proto.String("e1"),
			TripUpdate: &gtfs.TripUpdate{
				Trip: &gtfs.TripDescriptor{TripId: proto.String("t1")},
				StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
					{StopId: proto.String("X")},
					{StopId: proto.String("Y"), StopSequence: proto.Uint32(1)},
					{StopId: proto.String("Z")},
				},
			},
		}},
	}
	b, err := proto.Marshal(msg)
	require.NoError(t, err)

	snap, err := Decode(b)
	require.NoError(t, err)
	stops := snap.Trips[0].Stops
	require.Len(t, stops, 3)
	assert.Equal(t, "X", stops[0].StopID)
	assert.Equal(t, uint32(1), stops[0].StopSequence)
	assert.Equal(t, uint32(3), stops[2].StopSequence)
}

func TestDecode_DelayFallbacks(t *testing.T) {
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("vehicle-only"),
				Vehicle: &gtfs.VehiclePosition{
					Vehicle: &gtfs.VehicleDescriptor{Id: proto.String("v1")},
				},
			},
			{
				Id: proto.String("e1"),
				TripUpdate: &gtfs.TripUpdate{
					Trip:  &gtfs.TripDescriptor{TripId: proto.String("t1")},
					Delay: proto.Int32(60),
					StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
						{StopId: proto.String("A"), StopSequence: proto.Uint32(1),
							Departure: &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(1000), Delay: proto.Int32(300)}},
						{StopId: proto.String("B"), StopSequence: proto.Uint32(2),
							Arrival: &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(2000)}},
					},
				},
			},
		},
	}
	b, err := proto.Marshal(msg)
	require.NoError(t, err)

	snap, err := Decode(b)
	require.NoError(t, err)
	require.Len(t, snap.Trips, 1, "entities without trip updates are skipped")
	stops := snap.Trips[0].Stops
	assert.Equal(t, int32(300), stops[0].DelaySeconds)
	assert.Equal(t, int32(60), stops[1].DelaySeconds)
}

func TestStopTimeUpdate_Predicted(t *testing.T) {
	s := StopTimeUpdate{Departure: i64(200)}
	got, ok := s.Predicted()
	require.True(t, ok)
	assert.Equal(t, int64(200), got.Unix())

	s.Arrival = i64(150)
	got, _ = s.Predicted()
	assert.Equal(t, int64(150), got.Unix())

	_, ok = StopTimeUpdate{}.Predicted()
	assert.False(t, ok)
}

func TestTripUpdate_RunID(t *testing.T) {
	assert.Equal(t, "v", TripUpdate{TripID: "t", EntityID: "e", VehicleID: "v"}.RunID())
	assert.Equal(t, "e", TripUpdate{TripID: "t", EntityID: "e"}.RunID())
	assert.Equal(t, "t", TripUpdate{TripID: "t"}.RunID())
}

func TestDumpJSON(t *testing.T) {
	b, err := Encode(fixtureSnapshot(time.Unix(1700000000, 0)))
	require.NoError(t, err)

	out, err := DumpJSON(b)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"tripId"`)
	assert.Contains(t, string(out), `"2477937"`)

	_, err = DumpJSON([]byte{0xff})
	assert.Error(t, err)
}
