package court

import "testing"

func TestDataHashStableAcrossPhotoOrder(t *testing.T) {
	pos := 7
	a := Court{CourtCode: "5", JudgePhotos: []string{"b.jpg", "a.jpg"}, QueuePosition: &pos}
	b := Court{CourtCode: "5", JudgePhotos: []string{"a.jpg", "b.jpg"}, QueuePosition: &pos}

	ha, err := DataHash(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := DataHash(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Errorf("DataHash should be independent of photo order: %q != %q", ha, hb)
	}
}

func TestDataHashChangesOnSemanticChange(t *testing.T) {
	a := Court{CourtCode: "5", JudgeName: "J. A"}
	b := Court{CourtCode: "5", JudgeName: "J. B"}

	ha, _ := DataHash(a)
	hb, _ := DataHash(b)
	if ha == hb {
		t.Error("DataHash should differ when judge name changes")
	}
}

func TestHashHTMLDeterministic(t *testing.T) {
	html := []byte("<div>hello</div>")
	if HashHTML(html) != HashHTML(html) {
		t.Error("HashHTML should be deterministic")
	}
	if HashHTML(html) == HashHTML([]byte("<div>bye</div>")) {
		t.Error("HashHTML should differ for different input")
	}
}
