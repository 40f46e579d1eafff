package osrm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"route-planner-service/internal/domain"
	"testing"
	"time"
)

const okRoute = `{
	"code": "Ok",
	"routes": [{
		"distance": 1234.5,
		"duration": 180,
		"geometry": {"type": "LineString", "coordinates": [[-5.105, 37.802], [-5.1, 37.8]]},
		"legs": [{
			"steps": [
				{"name": "Calle Real", "distance": 600.4, "maneuver": {"type": "depart", "location": [-5.105, 37.802]}},
				{"name": "", "distance": 0, "maneuver": {"type": "turn", "modifier": "left", "location": [-5.103, 37.801]}},
				{"name": "", "distance": 0, "maneuver": {"type": "arrive", "location": [-5.1, 37.8]}}
			]
		}]
	}]
}`

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL: url,
		Timeout: 2 * time.Second,
		Probe:   [2]domain.Coordinates{{Lat: 37.802, Lon: -5.105}, {Lat: 37.8, Lon: -5.11}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestRouteRequestAndDecode(t *testing.T) {
	var path, rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		rawQuery = r.URL.RawQuery
		w.Write([]byte(okRoute))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	rt, err := c.Route(context.Background(), []domain.Coordinates{
		{Lat: 37.802, Lon: -5.105},
		{Lat: 37.8, Lon: -5.1},
	}, true)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if path != "/route/v1/driving/-5.105,37.802;-5.1,37.8" {
		t.Fatalf("path = %q", path)
	}
	if rawQuery != "geometries=geojson&overview=full&steps=true" {
		t.Fatalf("query = %q", rawQuery)
	}

	if rt.Distance != 1234.5 || rt.Geometry.Type != "LineString" || len(rt.Geometry.Coordinates) != 2 {
		t.Fatalf("route = %+v", rt)
	}
	if len(rt.Legs) != 1 || len(rt.Legs[0].Steps) != 3 {
		t.Fatalf("legs = %+v", rt.Legs)
	}
	first := rt.Legs[0].Steps[0]
	if first.Name != "Calle Real" || first.Maneuver.Location == nil || first.Maneuver.Location.Lat != 37.802 {
		t.Fatalf("first step = %+v", first)
	}
}

func TestRouteFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"no route code": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code":"NoRoute","message":"Impossible route between points"}`))
		},
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			_, err := c.Route(context.Background(), []domain.Coordinates{{}, {}}, true)
			if !errors.Is(err, domain.ErrRouteEngineUnavailable) {
				t.Fatalf("err = %v, want ErrRouteEngineUnavailable", err)
			}
		})
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("overview") != "false" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"code":"Ok"}`))
	}))
	defer srv.Close()

	if err := newTestClient(t, srv.URL).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
