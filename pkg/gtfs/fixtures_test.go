package gtfs

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var sampleFeed = map[string]string{
	"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
		"RVTD,Rogue Valley Transportation District,https://rvtd.org,America/Los_Angeles\n",
	"stops.txt": "\ufeffstop_id,stop_name,stop_lat,stop_lon\n" +
		"S1,Front Street,42.3265,-122.8756\n" +
		"S2,Main Street,42.3283,-122.8680\n" +
		"S3,Crater Lake Avenue,42.3301,-122.8601\n" +
		"S9,Elsewhere,42.5000,-122.5000\n",
	"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
		"R10,RVTD,10,Medford to Ashland,3\n" +
		"R40,RVTD,,Jacksonville,3\n",
	"trips.txt": "route_id,service_id,trip_id,trip_headsign,shape_id,direction_id\n" +
		"R10,WK,T1,Downtown,SH1,0\n" +
		"R10,WK,T2,Downtown,SH1,0\n" +
		"R10,SAT,T3,Downtown,SH1,0\n" +
		"R10,WK,T4,Airport,SH2,1\n" +
		"R40,WK,T5,Jacksonville,SH4,0\n",
	"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"T1,08:00:00,08:00:00,S1,1\n" +
		"T1,08:04:00,08:04:30,S2,2\n" +
		"T1,08:09:00,08:09:00,S3,3\n" +
		"T2,24:50:00,24:50:00,S1,1\n" +
		"T2,,,S2,2\n" +
		"T2,25:00:00,25:00:00,S3,3\n" +
		"T3,09:00:00,09:00:00,S1,1\n" +
		"T3,09:10:00,09:10:00,S3,3\n" +
		"T4,10:00:00,10:00:00,S3,1\n" +
		"T4,10:10:00,10:10:00,S1,2\n" +
		"T5,11:00:00,11:00:00,S9,1\n",
	"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
		"WK,1,1,1,1,1,0,0,20240603,20240609\n",
	"calendar_dates.txt": "service_id,date,exception_type\n" +
		"WK,20240605,2\n" +
		"SAT,20240608,1\n",
	"shapes.txt": "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\n" +
		"SH1,42.3301,-122.8601,3\n" +
		"SH1,42.3265,-122.8756,1\n" +
		"SH1,42.3283,-122.8680,2\n" +
		"SH2,42.3301,-122.8601,1\n" +
		"SH2,42.3265,-122.8756,2\n",
}

func zipFeed(t *testing.T, files map[string]string) []byte {
	t.Helper()

	buffer := &bytes.Buffer{}
	archive := zip.NewWriter(buffer)
	for name, contents := range files {
		file, err := archive.Create(name)
		require.NoError(t, err)
		_, err = file.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, archive.Close())

	return buffer.Bytes()
}

func parseSample(t *testing.T) *Schedule {
	t.Helper()

	schedule := &Schedule{}
	require.NoError(t, schedule.ParseFile(bytes.NewReader(zipFeed(t, sampleFeed))))
	return schedule
}
