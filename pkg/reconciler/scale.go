package reconciler

import (
	"context"
	"time"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// scaleReconcile implements spec.md §4.3.1 for a deployment that is not
// currently undergoing a rolling update: create pods to reach the desired
// replica count, or terminate the newest-index pods to shrink it.
func (r *Reconciler) scaleReconcile(ctx context.Context, d *v1.Deployment) {
	cur := r.store.CountActiveForDeployment(d.Name)
	des := int(d.Replicas)

	switch {
	case cur < des:
		r.createPods(d, des-cur)
	case cur > des:
		ids := r.store.GetPodsToTerminate(d.Name, cur-des)
		r.terminateMany(ctx, ids)
		r.tick.terminated += len(ids)
	}
}

// createPods creates n new Pending pods for d at its current revision,
// using the first n indices whose "<name>-<i>" is not an active pod name
// (spec.md §4.3.1).
func (r *Reconciler) createPods(d *v1.Deployment, n int) {
	if n <= 0 {
		return
	}
	taken := r.store.DeploymentPodNames(d.Name)
	created := 0
	for i := 0; created < n; i++ {
		name := v1.PodName(d.Name, i)
		if taken[name] {
			continue
		}
		dep := d.Name
		pod := &v1.Pod{
			ID:             v1.NewPodID(),
			Name:           name,
			Image:          d.Image,
			Resources:      d.Resources,
			DeploymentName: &dep,
			Status:         v1.PodPending,
			Revision:       d.Revision,
			CreatedAt:      time.Now(),
		}
		r.store.AddPod(pod)
		taken[name] = true
		created++
		r.tick.created++
	}
}
