package format

import (
	"encoding/xml"
	"strings"
	"testing"

	"siteforge/pkg/domain"
)

func TestExportRobotStructure(t *testing.T) {
	site := testSite()
	data, err := ExportRobot(site)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(string(data), xml.Header) {
		t.Fatal("missing XML header")
	}

	var robot urdfRobot
	if err := xml.Unmarshal(data, &robot); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if robot.Name != "depot" {
		t.Fatalf("robot name = %q", robot.Name)
	}

	// one root link, one per level, one per anchor
	wantLinks := 1 + len(site.Levels) + len(site.Anchors)
	if len(robot.Links) != wantLinks {
		t.Fatalf("exported %d links, want %d", len(robot.Links), wantLinks)
	}
	if len(robot.Joints) != wantLinks-1 {
		t.Fatalf("exported %d joints, want %d", len(robot.Joints), wantLinks-1)
	}

	joints := make(map[string]urdfJoint, len(robot.Joints))
	for _, j := range robot.Joints {
		joints[j.Child.Link] = j
		if j.Type != "fixed" {
			t.Fatalf("joint %s type = %q", j.Name, j.Type)
		}
	}

	// level joints hang off the root at their elevation
	mezz := joints["mezzanine_2"]
	if mezz.Parent.Link != "depot" {
		t.Fatalf("mezzanine parent = %q", mezz.Parent.Link)
	}
	if mezz.Origin.XYZ != "0 0 4.2" {
		t.Fatalf("mezzanine origin = %q", mezz.Origin.XYZ)
	}

	// anchor joints hang off their level at the horizontal offset
	a2 := joints["a2_2"]
	if a2.Parent.Link != "ground_1" {
		t.Fatalf("anchor a2 parent = %q", a2.Parent.Link)
	}
	if a2.Origin.XYZ != "3 4 0" {
		t.Fatalf("anchor a2 origin = %q", a2.Origin.XYZ)
	}
}

func TestExportRobotNameCollisions(t *testing.T) {
	site := domain.Site{
		Name:   "twins",
		Levels: []domain.Level{{ID: 1, Name: "L", Elevation: 0}},
		Anchors: []domain.Anchor{
			{ID: 1, Name: "dock", Level: 1},
			{ID: 2, Name: "dock", Level: 1, Position: domain.Vec2{X: 1}},
		},
		NextAnchor: 3, NextEdge: 1, NextLevel: 2, NextLift: 1,
	}
	data, err := ExportRobot(site)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var robot urdfRobot
	if err := xml.Unmarshal(data, &robot); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	seen := map[string]bool{}
	for _, l := range robot.Links {
		if seen[l.Name] {
			t.Fatalf("duplicate link name %q", l.Name)
		}
		seen[l.Name] = true
	}
}

func TestExportRobotRejectsDanglingAnchor(t *testing.T) {
	site := testSite()
	site.Anchors[0].Level = 77
	_, err := ExportRobot(site)
	if err == nil {
		t.Fatal("anchor on an undefined level must fail the export")
	}
}

func TestFrameNameSanitizes(t *testing.T) {
	cases := map[string]string{
		"":               "frame",
		"   ":            "frame",
		"Loading Dock 3": "Loading_Dock_3",
		"a/b.c":          "a_b_c",
	}
	for in, want := range cases {
		if got := frameName(in, "frame"); got != want {
			t.Fatalf("frameName(%q) = %q, want %q", in, got, want)
		}
	}
}
