// This file is part of zxfleet.
//
// zxfleet is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// zxfleet is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with zxfleet.  If not, see <https://www.gnu.org/licenses/>.

package webapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/zxfleet/core/batch"
	"github.com/zxfleet/core/config"
	"github.com/zxfleet/core/cpufacade"
	"github.com/zxfleet/core/events"
	"github.com/zxfleet/core/manager"
	"github.com/zxfleet/core/memory"
	"github.com/zxfleet/core/webapi"
)

type fakeCPU struct{ regs cpufacade.Registers }

func (c *fakeCPU) Reset()                             {}
func (c *fakeCPU) Registers() cpufacade.Registers     { return c.regs }
func (c *fakeCPU) SetRegisters(r cpufacade.Registers) { c.regs = r }
func (c *fakeCPU) Step() (int, error)                 { return 4, nil }
func (c *fakeCPU) Run(stop <-chan struct{}) error     { <-stop; return nil }

type fakePeripherals struct{ border byte }

func (p *fakePeripherals) BorderColour() byte           { return p.border }
func (p *fakePeripherals) SetBorderColour(v byte)       { p.border = v }
func (p *fakePeripherals) AYRegisters(int) [16]byte     { return [16]byte{} }
func (p *fakePeripherals) SetAYRegisters(int, [16]byte) {}
func (p *fakePeripherals) AYLatch() byte                { return 0 }
func (p *fakePeripherals) SetAYLatch(byte)              {}

func testFactory(model config.Model, mem *memory.Memory) (cpufacade.CPU, cpufacade.Peripherals) {
	return &fakeCPU{}, &fakePeripherals{}
}

func newTestServer() *webapi.Server {
	bus := events.NewBus(8)
	mgr := manager.New(bus, testFactory)
	dispatcher := batch.New(mgr, bus, batch.DefaultPoolSize, webapi.DefaultExecutor)
	return webapi.New(mgr, dispatcher, bus)
}

func TestCreateAndListInstance(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(map[string]string{"symbolic_id": "alpha", "model": "48k"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emulator/create", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/emulator", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var views []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(views) != 1 || views[0]["symbolic_id"] != "alpha" {
		t.Fatalf("list response = %+v, want one instance named alpha", views)
	}
}

func TestCreateRejectsUnknownModelWith400(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(map[string]string{"model": "nonexistent"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emulator/create", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body=%s", rec.Code, rec.Body.String())
	}
}

func TestDescribeMissingInstanceIs404(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/emulator/does-not-exist", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body=%s", rec.Code, rec.Body.String())
	}
}

func TestLifecycleEndpoints(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(map[string]string{"model": "48k"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emulator/create", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var created map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	id := created["id"].(string)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/emulator/"+id+"/start", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/emulator/"+id+"/pause", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("pause status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	// double-pause is a no-op, not an illegal transition (spec.md:130).
	req = httptest.NewRequest(http.MethodPost, "/api/v1/emulator/"+id+"/pause", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("double-pause status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/emulator/"+id+"/resume", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	// double-resume is also a no-op (spec.md:130); this is the case that
	// used to deadlock instead of returning.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/emulator/"+id+"/resume", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("double-resume status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/emulator/"+id+"/stop", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	// Stop from Stopped is also a no-op (spec.md:130).
	req = httptest.NewRequest(http.MethodPost, "/api/v1/emulator/"+id+"/stop", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("double-stop status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestBatchExecuteReturns207OnPartialFailure(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(map[string]interface{}{
		"commands": []map[string]string{
			{"emulator": "no-such-instance", "command": "reset"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch/execute", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207; body=%s", rec.Code, rec.Body.String())
	}
}

func TestBatchExecuteRejectsNonWhitelistedCommandWith400(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(map[string]interface{}{
		"commands": []map[string]string{{"emulator": "0", "command": "step"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch/execute", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body=%s", rec.Code, rec.Body.String())
	}
}

func TestSnapshotSaveSelectsFormatFromLockBit(t *testing.T) {
	bus := events.NewBus(8)
	mgr := manager.New(bus, testFactory)
	dispatcher := batch.New(mgr, bus, batch.DefaultPoolSize, webapi.DefaultExecutor)
	s := webapi.New(mgr, dispatcher, bus)

	in, err := mgr.Create("snaptest", config.Spectrum128K, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	dir := t.TempDir()

	// unlocked paging -> SNA128 (spec.md:93).
	unlockedPath := filepath.Join(dir, "unlocked.sna")
	body, _ := json.Marshal(map[string]string{"path": unlockedPath})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/emulator/"+in.ID+"/snapshot/save", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("save (unlocked) status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	info, err := os.Stat(unlockedPath)
	if err != nil {
		t.Fatalf("stat %s: %v", unlockedPath, err)
	}
	if info.Size() != 131103 {
		t.Fatalf("unlocked save size = %d, want 131103 (SNA128)", info.Size())
	}

	// lock paging, then save again -> SNA48.
	in.Decoder().LockPaging()

	lockedPath := filepath.Join(dir, "locked.sna")
	body, _ = json.Marshal(map[string]string{"path": lockedPath})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/emulator/"+in.ID+"/snapshot/save", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("save (locked) status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	info, err = os.Stat(lockedPath)
	if err != nil {
		t.Fatalf("stat %s: %v", lockedPath, err)
	}
	if info.Size() != 49179 {
		t.Fatalf("locked save size = %d, want 49179 (SNA48)", info.Size())
	}
}

func TestOpenAPIDocIsServed(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/openapi.json", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("openapi.json is not valid JSON: %v", err)
	}
}
