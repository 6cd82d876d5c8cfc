package supervisor

import "github.com/airsstack/airssys/cmn/log"

func logNotify(ev SupervisionEvent) {
	switch ev.Kind {
	case ChildFailed:
		log.V(log.ModuleRT, 1, "supervisor %s: child %s failed (prior_restarts=%d): %v", ev.SupervisorID, ev.ChildID, ev.RestartCount, ev.Err)
	case ChildRestarted:
		log.V(log.ModuleRT, 1, "supervisor %s: child %s restarted (restart_count=%d)", ev.SupervisorID, ev.ChildID, ev.RestartCount)
	case RestartLimitExceeded:
		log.Warningf("supervisor %s: child %s exceeded restart limit (count=%d)", ev.SupervisorID, ev.ChildID, ev.RestartCount)
	default:
		log.V(log.ModuleRT, 2, "supervisor %s: %s", ev.SupervisorID, ev.Kind)
	}
}
