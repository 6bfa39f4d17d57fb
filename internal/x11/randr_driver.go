package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/displayout/internal/customres"
)

// RandRDriver implements the custom display driver surface on top of RandR
// 1.2 user modes. The GPU handle is the screen's root window, a port is the
// output's index in the screen resources and a display id is the output XID.
type RandRDriver struct {
	conn        *Connection
	initialized bool
	lastErr     error
	trials      map[uint32]*trial
}

type trial struct {
	output randr.Output
	mode   randr.Mode
	crtc   randr.Crtc
	saved  bool
	prev   crtcConfig
}

type crtcConfig struct {
	x, y     int16
	mode     randr.Mode
	rotation uint16
	outputs  []randr.Output
}

var _ customres.Driver = (*RandRDriver)(nil)

// NewRandRDriver returns a driver over conn. A nil conn makes Initialize
// report the library as missing.
func NewRandRDriver(conn *Connection) *RandRDriver {
	return &RandRDriver{conn: conn, trials: make(map[uint32]*trial)}
}

func (d *RandRDriver) fail(status customres.Status, err error) customres.Status {
	d.lastErr = err
	return status
}

func (d *RandRDriver) Initialize() customres.Status {
	if d.conn == nil {
		return d.fail(customres.StatusLibraryNotFound, fmt.Errorf("no X connection"))
	}
	v, err := randr.QueryVersion(d.conn.XUtil.Conn(), 1, 2).Reply()
	if err != nil {
		return d.fail(customres.StatusLibraryNotFound, err)
	}
	if v.MajorVersion < 1 || (v.MajorVersion == 1 && v.MinorVersion < 2) {
		return d.fail(customres.StatusIncompatibleVersion,
			fmt.Errorf("RandR %d.%d does not support user modes", v.MajorVersion, v.MinorVersion))
	}
	d.initialized = true
	return customres.StatusOK
}

// Unload forgets outstanding trials without reverting them. Callers revert
// what they applied before shutting the backend down.
func (d *RandRDriver) Unload() customres.Status {
	if !d.initialized {
		return customres.StatusNotInitialized
	}
	clear(d.trials)
	d.initialized = false
	return customres.StatusOK
}

func (d *RandRDriver) ErrorMessage(status customres.Status) string {
	if d.lastErr != nil {
		return fmt.Sprintf("%s: %v", status, d.lastErr)
	}
	return status.String()
}

func (d *RandRDriver) resources() (*randr.GetScreenResourcesReply, customres.Status) {
	if !d.initialized {
		return nil, customres.StatusNotInitialized
	}
	res, err := randr.GetScreenResources(d.conn.XUtil.Conn(), d.conn.Root).Reply()
	if err != nil {
		return nil, d.fail(customres.StatusError, err)
	}
	return res, customres.StatusOK
}

func (d *RandRDriver) outputInfo(output randr.Output, res *randr.GetScreenResourcesReply) (*randr.GetOutputInfoReply, customres.Status) {
	info, err := randr.GetOutputInfo(d.conn.XUtil.Conn(), output, res.ConfigTimestamp).Reply()
	if err != nil {
		return nil, d.fail(customres.StatusInvalidDisplayID, err)
	}
	return info, customres.StatusOK
}

func (d *RandRDriver) EnumPhysicalGPUs() ([]uint64, customres.Status) {
	if !d.initialized {
		return nil, customres.StatusNotInitialized
	}
	return []uint64{uint64(d.conn.Root)}, customres.StatusOK
}

func (d *RandRDriver) DisplayIDFromPort(gpu uint64, port uint32) (uint32, customres.Status) {
	res, status := d.resources()
	if status != customres.StatusOK {
		return 0, status
	}
	if gpu != uint64(d.conn.Root) {
		return 0, d.fail(customres.StatusInvalidArgument, fmt.Errorf("unknown screen %d", gpu))
	}
	if int(port) >= len(res.Outputs) {
		return 0, d.fail(customres.StatusInvalidDisplayID, fmt.Errorf("port %d out of range", port))
	}
	return uint32(res.Outputs[port]), customres.StatusOK
}

func (d *RandRDriver) PortFromDisplayID(displayID uint32) (uint64, uint32, customres.Status) {
	res, status := d.resources()
	if status != customres.StatusOK {
		return 0, 0, status
	}
	for i, output := range res.Outputs {
		if uint32(output) == displayID {
			return uint64(d.conn.Root), uint32(i), customres.StatusOK
		}
	}
	return 0, 0, d.fail(customres.StatusInvalidDisplayID, fmt.Errorf("output %d not found", displayID))
}

func (d *RandRDriver) DisplayIDByName(name string) (uint32, customres.Status) {
	res, status := d.resources()
	if status != customres.StatusOK {
		return 0, status
	}
	for _, output := range res.Outputs {
		info, status := d.outputInfo(output, res)
		if status != customres.StatusOK {
			continue
		}
		if string(info.Name) == name {
			return uint32(output), customres.StatusOK
		}
	}
	return 0, d.fail(customres.StatusInvalidDisplayID, fmt.Errorf("no output named %q", name))
}

func (d *RandRDriver) ConnectedDisplays(gpu uint64) ([]customres.DisplayInfo, customres.Status) {
	res, status := d.resources()
	if status != customres.StatusOK {
		return nil, status
	}
	if gpu != uint64(d.conn.Root) {
		return nil, d.fail(customres.StatusInvalidArgument, fmt.Errorf("unknown screen %d", gpu))
	}
	var displays []customres.DisplayInfo
	for _, output := range res.Outputs {
		info, status := d.outputInfo(output, res)
		if status != customres.StatusOK || info.Connection != randr.ConnectionConnected {
			continue
		}
		displays = append(displays, customres.DisplayInfo{ID: uint32(output), Active: info.Crtc != 0})
	}
	return displays, customres.StatusOK
}

// crtcFor returns the CRTC driving output and its current configuration.
func (d *RandRDriver) crtcFor(output randr.Output, res *randr.GetScreenResourcesReply) (randr.Crtc, *randr.GetCrtcInfoReply, customres.Status) {
	info, status := d.outputInfo(output, res)
	if status != customres.StatusOK {
		return 0, nil, status
	}
	if info.Crtc == 0 {
		return 0, nil, d.fail(customres.StatusInvalidDisplayID, fmt.Errorf("output %s is not active", info.Name))
	}
	crtcInfo, err := randr.GetCrtcInfo(d.conn.XUtil.Conn(), info.Crtc, res.ConfigTimestamp).Reply()
	if err != nil {
		return 0, nil, d.fail(customres.StatusError, err)
	}
	return info.Crtc, crtcInfo, customres.StatusOK
}

// Timing derives a timing from the output's current mode.
func (d *RandRDriver) Timing(displayID uint32, input customres.TimingInput) (customres.Timing, customres.Status) {
	if input.Width == 0 || input.Height == 0 || input.RefreshRate <= 0 {
		return customres.Timing{}, d.fail(customres.StatusInvalidArgument,
			fmt.Errorf("invalid mode %dx%d@%v", input.Width, input.Height, input.RefreshRate))
	}
	res, status := d.resources()
	if status != customres.StatusOK {
		return customres.Timing{}, status
	}
	_, crtcInfo, status := d.crtcFor(randr.Output(displayID), res)
	if status != customres.StatusOK {
		return customres.Timing{}, status
	}
	var tpl randr.ModeInfo
	if input.Type == customres.TimingOverrideAuto {
		tpl, _ = findMode(res.Modes, crtcInfo.Mode)
	}
	timing := scaleTiming(tpl, input.Width, input.Height, input.RefreshRate)
	if err := checkModeRange(timing); err != nil {
		return customres.Timing{}, d.fail(customres.StatusInvalidArgument,
			fmt.Errorf("mode %dx%d@%v: %w", input.Width, input.Height, input.RefreshRate, err))
	}
	return timing, customres.StatusOK
}

// TryCustomDisplay registers each custom mode with its output without
// changing what is displayed.
func (d *RandRDriver) TryCustomDisplay(displayIDs []uint32, displays []customres.CustomDisplay) customres.Status {
	if len(displayIDs) != len(displays) || len(displayIDs) == 0 {
		return d.fail(customres.StatusInvalidArgument, fmt.Errorf("%d ids for %d displays", len(displayIDs), len(displays)))
	}
	res, status := d.resources()
	if status != customres.StatusOK {
		return status
	}
	conn := d.conn.XUtil.Conn()
	for i, id := range displayIDs {
		if _, ok := d.trials[id]; ok {
			if status := d.revert(id); status != customres.StatusOK {
				return status
			}
		}
		output := randr.Output(id)
		crtc, _, status := d.crtcFor(output, res)
		if status != customres.StatusOK {
			return status
		}

		cd := displays[i]
		name := fmt.Sprintf("%dx%d_%.2f", cd.Width, cd.Height, cd.Timing.RefreshRate())
		created, err := randr.CreateMode(conn, d.conn.Root, modeInfo(cd.Timing, name), name).Reply()
		if err != nil {
			return d.fail(customres.StatusModeChangeFailed, fmt.Errorf("create mode %s: %w", name, err))
		}
		if err := randr.AddOutputModeChecked(conn, output, created.Mode).Check(); err != nil {
			_ = randr.DestroyModeChecked(conn, created.Mode).Check()
			return d.fail(customres.StatusModeChangeFailed, fmt.Errorf("add mode %s: %w", name, err))
		}
		d.trials[id] = &trial{output: output, mode: created.Mode, crtc: crtc}
	}
	return customres.StatusOK
}

// SaveCustomDisplay switches each display's CRTC to its trial mode,
// remembering the previous configuration for revert.
func (d *RandRDriver) SaveCustomDisplay(displayIDs []uint32, thisOutputOnly, thisMonitorOnly bool) customres.Status {
	if !d.initialized {
		return customres.StatusNotInitialized
	}
	for _, id := range displayIDs {
		if _, ok := d.trials[id]; !ok {
			return d.fail(customres.StatusNoActiveTrial, fmt.Errorf("display %d has no trial", id))
		}
	}
	res, status := d.resources()
	if status != customres.StatusOK {
		return status
	}
	conn := d.conn.XUtil.Conn()
	for _, id := range displayIDs {
		tr := d.trials[id]
		crtcInfo, err := randr.GetCrtcInfo(conn, tr.crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			return d.fail(customres.StatusError, err)
		}
		if !tr.saved {
			tr.prev = crtcConfig{
				x:        crtcInfo.X,
				y:        crtcInfo.Y,
				mode:     crtcInfo.Mode,
				rotation: crtcInfo.Rotation,
				outputs:  crtcInfo.Outputs,
			}
		}
		outputs := crtcInfo.Outputs
		if thisOutputOnly {
			outputs = []randr.Output{tr.output}
		}
		if err := d.setCrtc(tr.crtc, res.ConfigTimestamp, crtcInfo.X, crtcInfo.Y, tr.mode, crtcInfo.Rotation, outputs); err != nil {
			return d.fail(customres.StatusModeChangeFailed, err)
		}
		tr.saved = true
	}
	return customres.StatusOK
}

func (d *RandRDriver) setCrtc(crtc randr.Crtc, cfgTimestamp xproto.Timestamp, x, y int16, mode randr.Mode, rotation uint16, outputs []randr.Output) error {
	reply, err := randr.SetCrtcConfig(d.conn.XUtil.Conn(), crtc, 0, cfgTimestamp, x, y, mode, rotation, outputs).Reply()
	if err != nil {
		return err
	}
	if reply.Status != randr.SetConfigSuccess {
		return fmt.Errorf("set crtc config: status %d", reply.Status)
	}
	return nil
}

// RevertCustomDisplayTrial restores the previous configuration and removes
// the trial mode.
func (d *RandRDriver) RevertCustomDisplayTrial(displayIDs []uint32) customres.Status {
	if !d.initialized {
		return customres.StatusNotInitialized
	}
	for _, id := range displayIDs {
		if status := d.revert(id); status != customres.StatusOK {
			return status
		}
	}
	return customres.StatusOK
}

func (d *RandRDriver) revert(id uint32) customres.Status {
	tr, ok := d.trials[id]
	if !ok {
		return d.fail(customres.StatusNoActiveTrial, fmt.Errorf("display %d has no trial", id))
	}
	conn := d.conn.XUtil.Conn()
	if tr.saved {
		res, status := d.resources()
		if status != customres.StatusOK {
			return status
		}
		p := tr.prev
		if err := d.setCrtc(tr.crtc, res.ConfigTimestamp, p.x, p.y, p.mode, p.rotation, p.outputs); err != nil {
			return d.fail(customres.StatusModeChangeFailed, err)
		}
		tr.saved = false
	}
	if err := randr.DeleteOutputModeChecked(conn, tr.output, tr.mode).Check(); err != nil {
		return d.fail(customres.StatusModeChangeFailed, fmt.Errorf("delete output mode: %w", err))
	}
	if err := randr.DestroyModeChecked(conn, tr.mode).Check(); err != nil {
		d.lastErr = err
	}
	delete(d.trials, id)
	return customres.StatusOK
}
