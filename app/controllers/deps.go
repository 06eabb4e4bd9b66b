package controllers

import (
	"sync"

	"github.com/ManuelReschke/PauseFlow/app/repository"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/pausing"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/reconcile"
	"github.com/ManuelReschke/PauseFlow/internal/pkg/stripeapi"
)

var (
	depsMu       sync.Mutex
	depsRepos    *repository.Repositories
	depsStripe   stripeapi.Client
	depsService  *pausing.Service
	depsReconcil *reconcile.Reconciler
)

// SetDependencies wires the controller package. Called once at boot
// with the global repositories and the live Stripe client; tests call
// it with fakes.
func SetDependencies(repos *repository.Repositories, stripe stripeapi.Client) {
	depsMu.Lock()
	defer depsMu.Unlock()
	depsRepos = repos
	depsStripe = stripe
	depsService = pausing.NewService(repos, stripe)
	depsReconcil = reconcile.NewReconciler(repos)
}

func getRepos() *repository.Repositories {
	depsMu.Lock()
	defer depsMu.Unlock()
	if depsRepos == nil {
		depsRepos = repository.GetGlobalRepositories()
	}
	return depsRepos
}

func getStripeClient() stripeapi.Client {
	depsMu.Lock()
	defer depsMu.Unlock()
	if depsStripe == nil {
		depsStripe = stripeapi.NewClientFromEnv()
	}
	return depsStripe
}

func getPausingService() *pausing.Service {
	depsMu.Lock()
	if depsService != nil {
		defer depsMu.Unlock()
		return depsService
	}
	depsMu.Unlock()
	svc := pausing.NewService(getRepos(), getStripeClient())
	depsMu.Lock()
	depsService = svc
	depsMu.Unlock()
	return svc
}

func getReconciler() *reconcile.Reconciler {
	depsMu.Lock()
	if depsReconcil != nil {
		defer depsMu.Unlock()
		return depsReconcil
	}
	depsMu.Unlock()
	rec := reconcile.NewReconciler(getRepos())
	depsMu.Lock()
	depsReconcil = rec
	depsMu.Unlock()
	return rec
}
